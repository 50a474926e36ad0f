package xsqldb

import "errors"

// 包级别错误定义。
var (
	// ErrNilDB 表示传入了 nil 数据库句柄。
	ErrNilDB = errors.New("xsqldb: nil db")

	// ErrNilAnnotator 表示传入了 nil 注释器。
	ErrNilAnnotator = errors.New("xsqldb: nil annotator")

	// ErrClosed 表示数据库句柄已关闭。
	ErrClosed = errors.New("xsqldb: db closed")

	// ErrEmptyQuery 表示查询语句为空。
	ErrEmptyQuery = errors.New("xsqldb: empty query")
)
