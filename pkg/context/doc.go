// Package context 提供环境上下文管理相关的子包。
//
// 子包列表：
//   - xqctx: 查询注释的环境上下文，携带标签值、世代计数与渲染记忆
//
// 设计原则：
//   - 所有上下文信息通过 context.Context 传递，不使用全局变量
//   - 上下文变更通过世代计数显式可见，供缓存失效判定
//   - 支持 W3C Trace Context 标准
package context
