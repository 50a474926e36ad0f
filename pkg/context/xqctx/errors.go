package xqctx

import "errors"

// =============================================================================
// 通用错误
// =============================================================================

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xqctx: nil context")

	// ErrNilStore 表示传入的 Store 为 nil。
	ErrNilStore = errors.New("xqctx: nil store")

	// ErrNoStore 表示 context 中未挂载 Store。
	// 写操作（Set/Delete）要求 Store 必须存在；读操作缺失时返回零值而非错误。
	ErrNoStore = errors.New("xqctx: no store in context")
)
