package xtag

// =============================================================================
// 选项模式
// =============================================================================

// Options 包含注释器的配置选项。
// 通过 Option 函数修改，在 New 中一次性校验并固化。
type Options struct {
	// Spec 有序标签规格。
	Spec Spec

	// Registry 键→解析器兜底注册表。
	// 规格中未内联绑定解析器的键先查此表，查不到再读环境上下文。
	// 优先级：内联解析器 > 注册表 > 环境上下文直读。
	Registry map[string]Resolver

	// Prepend 为 true 时注释放在查询文本之前，默认追加在末尾。
	Prepend bool

	// CacheEnabled 为 true 时启用每工作单元的渲染记忆。
	// 记忆存放在 xqctx.Store 的槽位中，上下文变更即失效。
	CacheEnabled bool

	// Formatter 格式化器标识，默认 FormatterLegacy。
	Formatter FormatterKind

	// RenderCacheSize 跨工作单元 LRU 渲染缓存容量。
	// 0 表示禁用。启用的前提是所有解析器都是快照的纯函数
	// （缓存键只包含快照内容与格式化器标识）。
	RenderCacheSize int
}

// Option 是用于配置 Options 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Formatter: FormatterLegacy,
	}
}

// WithSpec 设置标签规格，替换既有规格。
func WithSpec(spec Spec) Option {
	return func(o *Options) {
		o.Spec = spec
	}
}

// WithTags 向规格追加标签。
func WithTags(tags ...Tag) Option {
	return func(o *Options) {
		o.Spec = o.Spec.With(tags...)
	}
}

// WithResolver 在兜底注册表中登记一个键的解析器。
// r 为 nil 或 key 为空时在 New 中报错（fail-fast）。
func WithResolver(key string, r Resolver) Option {
	return func(o *Options) {
		if o.Registry == nil {
			o.Registry = make(map[string]Resolver)
		}
		o.Registry[key] = r
	}
}

// WithPrepend 设置注释放置位置：true 前置，false 追加（默认）。
func WithPrepend(prepend bool) Option {
	return func(o *Options) {
		o.Prepend = prepend
	}
}

// WithCache 设置是否启用每工作单元渲染记忆。
func WithCache(enabled bool) Option {
	return func(o *Options) {
		o.CacheEnabled = enabled
	}
}

// WithFormatter 设置格式化器。非法标识在 New 中报 ErrUnsupportedFormatter。
func WithFormatter(kind FormatterKind) Option {
	return func(o *Options) {
		o.Formatter = kind
	}
}

// WithRenderCache 启用跨工作单元 LRU 渲染缓存并设置容量。
// size 为 0 表示禁用（默认），负数在 New 中报 ErrInvalidCacheSize。
func WithRenderCache(size int) Option {
	return func(o *Options) {
		o.RenderCacheSize = size
	}
}

// validate 校验选项组合。
func (o *Options) validate() error {
	if o.RenderCacheSize < 0 {
		return ErrInvalidCacheSize
	}
	if err := o.Spec.validate(); err != nil {
		return err
	}
	for key, r := range o.Registry {
		if key == "" {
			return ErrEmptyTagKey
		}
		if r == nil {
			return ErrNilResolver
		}
		if _, bad := r.(invalidResolver); bad {
			return ErrNilResolver
		}
	}
	return nil
}
