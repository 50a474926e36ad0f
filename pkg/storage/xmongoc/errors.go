package xmongoc

import "errors"

// 包级别错误定义。
var (
	// ErrNilCollection 表示传入了 nil 集合。
	ErrNilCollection = errors.New("xmongoc: nil collection")

	// ErrNilAnnotator 表示传入了 nil 注释器。
	ErrNilAnnotator = errors.New("xmongoc: nil annotator")
)
