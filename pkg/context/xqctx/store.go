package xqctx

import (
	"sync"
	"sync/atomic"
)

// =============================================================================
// Snapshot 类型
// =============================================================================

// Snapshot 是环境上下文在某一时刻的只读快照。
// 由 Store.Snapshot 拷贝生成，调用方可安全持有，不受后续写入影响。
type Snapshot map[string]any

// Value 返回键对应的值，不存在返回 nil。
func (s Snapshot) Value(key string) any {
	return s[key]
}

// String 返回键对应的字符串值，不存在或非字符串返回空字符串。
func (s Snapshot) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// =============================================================================
// Store 实现
// =============================================================================

// Store 是一次逻辑工作单元的环境上下文存储。
//
// 写操作（Set/SetAll/Delete/Clear）同步递增 generation 并触发 OnChange
// 钩子；以 generation 为键的缓存在上下文变更后自然失效，
// 这就是"上下文变更必须同步使缓存失效"契约的实现方式。
//
// 所有方法对 nil 接收者安全：读操作返回零值，写操作为 no-op。
type Store struct {
	mu     sync.RWMutex
	values map[string]any
	hooks  []func()

	// gen 变更代数。每次写操作递增一次（SetAll 批量写也只递增一次）。
	gen atomic.Uint64

	// 注释记忆槽位，见 doc.go "注释缓存槽位"。
	memoMu    sync.Mutex
	memoOwner uint64
	memoGen   uint64
	memoEpoch uint64
	memoVal   string
	memoOK    bool
}

// NewStore 创建空的环境上下文存储。
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// NewStoreFrom 创建带初始键值的环境上下文存储。
// 初始写入不递增 generation（初始状态即第 0 代）。
func NewStoreFrom(kv map[string]any) *Store {
	values := make(map[string]any, len(kv))
	for k, v := range kv {
		values[k] = v
	}
	return &Store{values: values}
}

// Set 写入一个键值并递增 generation。
func (s *Store) Set(key string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[key] = value
	s.mu.Unlock()
	s.bump()
}

// SetAll 批量写入键值，整批只递增一次 generation。
func (s *Store) SetAll(kv map[string]any) {
	if s == nil || len(kv) == 0 {
		return
	}
	s.mu.Lock()
	if s.values == nil {
		s.values = make(map[string]any, len(kv))
	}
	for k, v := range kv {
		s.values[k] = v
	}
	s.mu.Unlock()
	s.bump()
}

// Delete 删除一个键。键不存在时也视为一次变更（与原样重写同语义）。
func (s *Store) Delete(key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	s.bump()
}

// Clear 清空所有键值并递增 generation。
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.values = make(map[string]any)
	s.mu.Unlock()
	s.bump()
}

// Get 读取键对应的值。
func (s *Store) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Len 返回键的数量。
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot 返回当前内容的拷贝。
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.values))
	for k, v := range s.values {
		snap[k] = v
	}
	return snap
}

// Generation 返回当前变更代数。
func (s *Store) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.gen.Load()
}

// OnChange 注册变更钩子。每次写操作后在写入方 goroutine 中同步调用。
//
// 钩子在持锁外执行，允许钩子内读取 Store；但钩子内再写 Store 会造成
// 递归触发，调用方需自行避免。
func (s *Store) OnChange(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// bump 递增 generation 并触发钩子。
func (s *Store) bump() {
	s.gen.Add(1)
	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// =============================================================================
// 注释记忆槽位
//
// 供 xtag 使用的单槽位缓存。单槽位足够：一个工作单元内通常只有
// 一个注释器在工作，多注释器交替使用时退化为重算，不产生错误结果。
// =============================================================================

// CachedComment 读取记忆槽位。仅当 (owner, gen, epoch) 三元组完全匹配
// 且槽位有效时命中。
func (s *Store) CachedComment(owner, gen, epoch uint64) (string, bool) {
	if s == nil {
		return "", false
	}
	s.memoMu.Lock()
	defer s.memoMu.Unlock()
	if !s.memoOK || s.memoOwner != owner || s.memoGen != gen || s.memoEpoch != epoch {
		return "", false
	}
	return s.memoVal, true
}

// StoreComment 写入记忆槽位，覆盖旧值。
func (s *Store) StoreComment(owner, gen, epoch uint64, comment string) {
	if s == nil {
		return
	}
	s.memoMu.Lock()
	defer s.memoMu.Unlock()
	s.memoOwner = owner
	s.memoGen = gen
	s.memoEpoch = epoch
	s.memoVal = comment
	s.memoOK = true
}

// InvalidateComment 手动作废记忆槽位。
// 正常路径依赖 generation 自然失效，此方法用于显式清理场景。
func (s *Store) InvalidateComment() {
	if s == nil {
		return
	}
	s.memoMu.Lock()
	s.memoOK = false
	s.memoVal = ""
	s.memoMu.Unlock()
}
