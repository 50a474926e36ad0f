package xtag

import "github.com/omeyang/qkit/pkg/context/xqctx"

// =============================================================================
// 标签规格
// =============================================================================

// Tag 是一个标签描述符：键，加上可选的显式解析器。
// Resolver 为 nil 时按键读取注册表，注册表也没有时直接读环境上下文。
type Tag struct {
	Key      string
	Resolver Resolver
}

// Key 构造只有键的标签描述符（值从环境上下文按键读取）。
func Key(key string) Tag {
	return Tag{Key: key}
}

// Bind 构造带显式解析器的标签描述符。
// r 为 nil 时（包括 Producer(nil) 的返回值）会在 New 的校验中报 ErrNilResolver；
// 如果只想按键读取上下文，请使用 Key。
func Bind(key string, r Resolver) Tag {
	if r == nil {
		return Tag{Key: key, Resolver: invalidResolver{}}
	}
	return Tag{Key: key, Resolver: r}
}

// invalidResolver 标记 Bind 收到了 nil 解析器。
// 无法用 Tag.Resolver == nil 区分"Bind 传了 nil"和"Key 构造"两种情况，
// 用哨兵类型保留这个区别，让 validate 能够 fail-fast。
type invalidResolver struct{}

func (invalidResolver) resolve(xqctx.Snapshot) any { return nil }

// Spec 是有序的标签描述符序列。声明顺序即渲染顺序。
type Spec []Tag

// NewSpec 从标签描述符构造规格。
func NewSpec(tags ...Tag) Spec {
	return Spec(tags)
}

// Merge 将多组规格按顺序平铺为一个规格。
// 嵌套的标签分组经 Merge 展开后进入顶层序列，保持相对顺序。
func Merge(groups ...Spec) Spec {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	merged := make(Spec, 0, total)
	for _, g := range groups {
		merged = append(merged, g...)
	}
	return merged
}

// With 返回追加了标签的新规格，不修改原规格。
func (s Spec) With(tags ...Tag) Spec {
	out := make(Spec, 0, len(s)+len(tags))
	out = append(out, s...)
	out = append(out, tags...)
	return out
}

// validate 校验规格：键非空、显式解析器非 nil。
// 允许重复键：同键多次出现时各自独立渲染，与声明顺序一致。
func (s Spec) validate() error {
	for _, tag := range s {
		if tag.Key == "" {
			return ErrEmptyTagKey
		}
		if _, bad := tag.Resolver.(invalidResolver); bad {
			return ErrNilResolver
		}
	}
	return nil
}
