package xtag

import (
	"context"
	"encoding/binary"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/qkit/pkg/context/xqctx"
)

// annotatorSeq 为每个注释器实例分配进程内唯一标识，
// 用作 Store 记忆槽位的 owner 键，避免多注释器互相污染缓存。
var annotatorSeq atomic.Uint64

// formatterState 将格式化器及其标识绑定为一个原子替换单元。
type formatterState struct {
	kind FormatterKind
	f    Formatter
}

// =============================================================================
// Annotator
// =============================================================================

// Annotator 把环境上下文元数据渲染为块注释并附加到查询语句上。
//
// 配置在 New 中固化；Annotate/Comment 可被多个工作单元并发调用，
// 唯一的运行期变更入口是 SetFormatter（原子替换 + epoch 失效）。
type Annotator struct {
	id       uint64
	spec     Spec
	registry map[string]Resolver
	prepend  bool
	cache    bool

	// epoch 配置代数。SetFormatter 递增，使所有 Store 记忆槽位失效。
	epoch     atomic.Uint64
	formatter atomic.Pointer[formatterState]

	// renderCache 跨工作单元 LRU，键为快照内容指纹。nil 表示禁用。
	renderCache *lru.Cache[uint64, string]
}

// New 创建注释器。所有配置错误在此处 fail-fast。
func New(opts ...Option) (*Annotator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	f, err := newFormatter(o.Formatter)
	if err != nil {
		return nil, err
	}

	a := &Annotator{
		id:       annotatorSeq.Add(1),
		spec:     o.Spec.With(), // 拷贝，隔离调用方后续对切片的修改
		registry: cloneRegistry(o.Registry),
		prepend:  o.Prepend,
		cache:    o.CacheEnabled,
	}
	a.formatter.Store(&formatterState{kind: o.Formatter, f: f})

	if o.RenderCacheSize > 0 {
		cache, err := lru.New[uint64, string](o.RenderCacheSize)
		if err != nil {
			return nil, err
		}
		a.renderCache = cache
	}
	return a, nil
}

func cloneRegistry(registry map[string]Resolver) map[string]Resolver {
	if len(registry) == 0 {
		return nil
	}
	out := make(map[string]Resolver, len(registry))
	for k, r := range registry {
		out[k] = r
	}
	return out
}

// =============================================================================
// 对外操作
// =============================================================================

// Annotate 返回附加了元数据注释的查询语句。
// 注释为空时返回去除首尾空白的原语句；否则以单个空格分隔，
// 默认追加在末尾，Prepend 配置下前置。
func (a *Annotator) Annotate(ctx context.Context, sql string) string {
	sql = strings.TrimSpace(sql)
	comment := a.Comment(ctx)
	if comment == "" {
		return sql
	}
	if a.prepend {
		return comment + " " + sql
	}
	return sql + " " + comment
}

// Comment 返回渲染后的完整注释（含 /* */ 定界符），无片段时返回空串。
// 相同的环境上下文与配置下结果确定，这是缓存正确性的前提。
func (a *Annotator) Comment(ctx context.Context) string {
	store := xqctx.FromContext(ctx)

	if a.cache && store != nil {
		gen := store.Generation()
		epoch := a.epoch.Load()
		if c, ok := store.CachedComment(a.id, gen, epoch); ok {
			return c
		}
		c := a.render(store.Snapshot())
		store.StoreComment(a.id, gen, epoch, c)
		return c
	}

	return a.render(store.Snapshot())
}

// CommentBody 返回不含定界符的注释正文（已剥离危险序列），
// 供不使用 SQL 注释语法的下游（如 MongoDB $comment）复用同一份元数据。
func (a *Annotator) CommentBody(ctx context.Context) string {
	comment := a.Comment(ctx)
	if comment == "" {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(comment, "/*"), "*/")
}

// SetFormatter 运行期切换格式化器。
// 非法标识返回 ErrUnsupportedFormatter，不影响现有格式化器。
// 切换成功后递增 epoch，既有的每工作单元记忆全部失效；
// LRU 缓存键包含格式化器标识，旧条目不会被误命中，但会被清空以释放容量。
func (a *Annotator) SetFormatter(kind FormatterKind) error {
	f, err := newFormatter(kind)
	if err != nil {
		return err
	}
	a.formatter.Store(&formatterState{kind: kind, f: f})
	a.epoch.Add(1)
	if a.renderCache != nil {
		a.renderCache.Purge()
	}
	return nil
}

// Formatter 返回当前格式化器标识。
func (a *Annotator) Formatter() FormatterKind {
	return a.formatter.Load().kind
}

// ClearCache 手动作废缓存：清除 ctx 所属 Store 的记忆槽位与 LRU 缓存。
// 正常路径依赖 generation/epoch 自然失效，此方法用于显式清理场景。
func (a *Annotator) ClearCache(ctx context.Context) {
	xqctx.FromContext(ctx).InvalidateComment()
	if a.renderCache != nil {
		a.renderCache.Purge()
	}
}

// =============================================================================
// 渲染管线
// =============================================================================

// render 从快照渲染完整注释。snap 可以为 nil（无环境上下文）。
func (a *Annotator) render(snap xqctx.Snapshot) string {
	fs := a.formatter.Load()

	if a.renderCache != nil {
		key := a.fingerprint(snap, fs.kind)
		if c, ok := a.renderCache.Get(key); ok {
			return c
		}
		c := a.renderSlow(snap, fs.f)
		a.renderCache.Add(key, c)
		return c
	}
	return a.renderSlow(snap, fs.f)
}

// renderSlow 完整执行解析→格式化→连接→剥离→包裹。
func (a *Annotator) renderSlow(snap xqctx.Snapshot, f Formatter) string {
	var b strings.Builder
	wrote := false
	for _, tag := range a.spec {
		value, ok := a.resolveTag(tag, snap)
		if !ok {
			continue
		}
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(f.Fragment(tag.Key, value))
		wrote = true
	}
	if !wrote {
		return ""
	}
	body := stripCommentDelimiters(b.String())
	if body == "" {
		return ""
	}
	return "/*" + body + "*/"
}

// resolveTag 解析单个标签。第二个返回值为 false 表示值缺失（跳过）。
// 优先级：内联解析器 > 注册表 > 环境上下文直读。
// 解析器内部的 panic 原样向上传播。
func (a *Annotator) resolveTag(tag Tag, snap xqctx.Snapshot) (any, bool) {
	r := tag.Resolver
	if r == nil {
		r = a.registry[tag.Key]
	}

	var value any
	if r != nil {
		value = r.resolve(snap)
	} else {
		value = snap[tag.Key]
	}
	return value, !isAbsent(value)
}

// isAbsent 判定值是否缺失：nil 与空串都视为缺失。
// false 与 0 是有意义的字面值，不视为缺失。
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// fingerprint 计算快照内容指纹（含格式化器标识）。
// 键按字典序写入，保证与 map 遍历顺序无关。
// 每段先写 uvarint 长度再写内容：值里的任意字节都无法伪造字段边界，
// 不同形状的快照不会折叠成同一个缓存键。
func (a *Annotator) fingerprint(snap xqctx.Snapshot, kind FormatterKind) uint64 {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := xxhash.New()
	var lenBuf [binary.MaxVarintLen64]byte
	writeFrame := func(s string) {
		n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
		_, _ = d.Write(lenBuf[:n])
		_, _ = d.WriteString(s)
	}

	writeFrame(string(kind))
	for _, k := range keys {
		writeFrame(k)
		writeFrame(formatValue(snap[k]))
	}
	return d.Sum64()
}
