package xtag

import "github.com/omeyang/qkit/pkg/context/xqctx"

// =============================================================================
// Resolver 变体
//
// 设计决策: 解析器是封闭的带标签变体（sealed interface），而非接受任意
// 可调用值后做参数个数探测。三种变体覆盖全部解析语义：
//   - Literal：常量值
//   - Producer：无参生产函数
//   - ContextProducer：接收环境上下文快照的生产函数
// =============================================================================

// Resolver 将一个标签解析为值。
// 通过 Literal / Producer / ContextProducer 构造，不允许包外实现。
type Resolver interface {
	// resolve 返回标签值。nil 或空串视为缺失，由渲染管线跳过。
	resolve(snap xqctx.Snapshot) any
}

type literalResolver struct {
	value any
}

func (r literalResolver) resolve(xqctx.Snapshot) any {
	return r.value
}

type producerResolver struct {
	fn func() any
}

func (r producerResolver) resolve(xqctx.Snapshot) any {
	return r.fn()
}

type contextProducerResolver struct {
	fn func(snap xqctx.Snapshot) any
}

func (r contextProducerResolver) resolve(snap xqctx.Snapshot) any {
	return r.fn(snap)
}

// Literal 构造常量解析器。
func Literal(value any) Resolver {
	return literalResolver{value: value}
}

// Producer 构造无参生产函数解析器。
// fn 为 nil 时返回 nil，由 New 的校验统一报 ErrNilResolver。
func Producer(fn func() any) Resolver {
	if fn == nil {
		return nil
	}
	return producerResolver{fn: fn}
}

// ContextProducer 构造接收环境上下文快照的生产函数解析器。
// fn 内部的 panic 不会被渲染管线捕获（配置缺陷应当暴露）。
func ContextProducer(fn func(snap xqctx.Snapshot) any) Resolver {
	if fn == nil {
		return nil
	}
	return contextProducerResolver{fn: fn}
}
