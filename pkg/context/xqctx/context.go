package xqctx

import "context"

// contextKey 使用 string 而非 int+iota：包私有类型不会与其他包冲突，
// 字符串值在调试中可读性高。
type contextKey string

const keyStore = contextKey("xqctx:store")

// =============================================================================
// context 集成
// =============================================================================

// WithStore 将 Store 挂载到 context。
//
// 设计决策: 返回 error 而非 panic（项目规范：构造类函数统一返回 error）。
// 如果 ctx 为 nil 返回 ErrNilContext，s 为 nil 返回 ErrNilStore。
func WithStore(ctx context.Context, s *Store) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if s == nil {
		return nil, ErrNilStore
	}
	return context.WithValue(ctx, keyStore, s), nil
}

// FromContext 从 context 提取 Store，不存在返回 nil。
// 返回的 nil Store 对所有读方法安全（返回零值）。
func FromContext(ctx context.Context) *Store {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(keyStore).(*Store); ok {
		return s
	}
	return nil
}

// Values 返回 context 中 Store 的快照，Store 不存在返回 nil。
func Values(ctx context.Context) Snapshot {
	return FromContext(ctx).Snapshot()
}

// Set 向 context 中的 Store 写入键值。
// Store 不存在时返回 ErrNoStore：写操作必须有明确的落点，
// 静默丢弃会掩盖中间件链的配置错误。
func Set(ctx context.Context, key string, value any) error {
	s := FromContext(ctx)
	if s == nil {
		return ErrNoStore
	}
	s.Set(key, value)
	return nil
}

// Delete 从 context 中的 Store 删除键。
// Store 不存在时返回 ErrNoStore。
func Delete(ctx context.Context, key string) error {
	s := FromContext(ctx)
	if s == nil {
		return ErrNoStore
	}
	s.Delete(key)
	return nil
}
