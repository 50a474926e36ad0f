package xchsql

import "errors"

// 包级别错误定义。
var (
	// ErrNilConn 表示传入了 nil 连接。
	ErrNilConn = errors.New("xchsql: nil connection")

	// ErrNilAnnotator 表示传入了 nil 注释器。
	ErrNilAnnotator = errors.New("xchsql: nil annotator")

	// ErrClosed 表示连接已关闭。
	ErrClosed = errors.New("xchsql: connection closed")

	// ErrEmptyQuery 表示查询语句为空。
	ErrEmptyQuery = errors.New("xchsql: empty query")

	// ErrEmptyTable 表示表名为空。
	ErrEmptyTable = errors.New("xchsql: empty table name")

	// ErrInvalidTableName 表示表名包含非法字符。
	ErrInvalidTableName = errors.New("xchsql: invalid table name, contains illegal characters")

	// ErrEmptyRows 表示待插入数据为空。
	ErrEmptyRows = errors.New("xchsql: empty rows")

	// ErrBatchSizeTooLarge 表示每批大小超过 MaxBatchSize。
	ErrBatchSizeTooLarge = errors.New("xchsql: batch size too large")
)
