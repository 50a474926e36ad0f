// Package xqctx 提供请求/任务级别的环境上下文（Ambient Context）存储。
//
// # 设计理念
//
// xqctx 为一次逻辑工作单元（一个 HTTP 请求、一个后台任务）维护一份
// key→value 元数据快照，供查询注释（xtag）等组件读取：
//   - Store：单个工作单元的键值存储，带变更代数（generation）计数
//   - context 集成：WithStore / FromContext 将 Store 挂载到 context.Context
//   - 变更通知：每次写操作同步递增 generation 并触发 OnChange 钩子，
//     依赖方以 generation 为缓存失效依据，不存在"错过通知"的窗口
//
// # 并发模型
//
// 单写多读：一个工作单元内通常只有一个 goroutine 写入 Store，
// 但允许并发读取（RWMutex 保护 map，generation 为原子计数）。
// 不同工作单元各自持有独立 Store，互不共享。
//
// # 注释缓存槽位
//
// Store 自身携带渲染结果的记忆槽位（CachedComment/StoreComment）。
// 槽位以 (owner, generation, epoch) 为键：owner 区分不同的注释器实例，
// generation 绑定上下文版本，epoch 绑定注释器配置版本。
// 任何一项变化都会使旧值自然失效，无需显式清理。
//
// # 常用键
//
// application、controller、action、job、request_id、db_host、traceparent
// 以常量导出（Key* 系列），与日志属性（AppendAttrs）共用同一套命名。
package xqctx
