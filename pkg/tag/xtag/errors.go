package xtag

import "errors"

// =============================================================================
// 配置错误
//
// 全部在构造/选择时 fail-fast，渲染路径本身不产生错误。
// =============================================================================

var (
	// ErrUnsupportedFormatter 表示格式化器标识不是 legacy/structured 之一。
	ErrUnsupportedFormatter = errors.New("xtag: unsupported formatter")

	// ErrEmptyTagKey 表示标签键为空字符串。
	ErrEmptyTagKey = errors.New("xtag: empty tag key")

	// ErrNilResolver 表示显式绑定的解析器为 nil。
	// Bind(key, nil) 几乎总是配置笔误；如果只想按键读取上下文，请使用 Key(key)。
	ErrNilResolver = errors.New("xtag: nil resolver")

	// ErrInvalidCacheSize 表示 LRU 渲染缓存容量为负数（0 表示禁用）。
	ErrInvalidCacheSize = errors.New("xtag: render cache size must not be negative")
)
