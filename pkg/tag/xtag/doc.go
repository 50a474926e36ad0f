// Package xtag 提供 SQL 查询注释（query annotation）能力：
// 在查询下发前，把当前工作单元的元数据渲染为一段确定性的块注释并附加到语句上。
//
// # 设计理念
//
// xtag 是查询执行路径上的纯函数装饰器，不做任何 IO：
//   - 标签规格（Spec）：有序的标签描述符序列，声明注释包含哪些键
//   - 解析器（Resolver）：显式变体 Literal / Producer / ContextProducer，
//     不做运行时参数个数探测
//   - 格式化器：legacy（key='value'）与 structured（key=%27percent-encoded%27）
//     两种互换策略
//   - 环境上下文：值来源于 xqctx.Store 的快照，按 generation 实现缓存失效
//
// # 渲染管线
//
// 对 Spec 中的每个标签依次执行：
//  1. 取内联解析器；无内联解析器时回退到注册表（内联优先，注册表兜底）
//  2. 两者都没有时直接按键读取环境上下文快照
//  3. 解析值缺失（nil 或空串）→ 跳过，不产生片段
//  4. 否则由格式化器生成 key/value 片段
//
// 片段以逗号连接，连接后的正文经过注释定界符剥离（防注释注入，见 escape.go），
// 非空正文包裹为 /*...*/。
//
// # 缓存
//
// 两级、均为可选：
//   - 每工作单元记忆：渲染结果缓存在 Store 自身的槽位中，
//     以 (annotator, generation, epoch) 为键，上下文一变更即失效
//   - 跨工作单元 LRU：以快照内容指纹（xxhash）为键的有界缓存，
//     适合大量请求携带相同元数据的场景（WithRenderCache 启用）
//
// # 并发模型
//
// Annotator 配置在构造时固定（set-once），Annotate 无锁并发安全；
// 唯一的运行期可变项是格式化器（SetFormatter），通过原子指针替换，
// 并以 epoch 递增使所有既有缓存失效。
//
// # 错误处理
//
// 不支持的格式化器在选择时即失败（ErrUnsupportedFormatter），不会推迟到
// 首次渲染。解析器内部的 panic 不被捕获：标签解析错误属于配置缺陷，
// 由调用方修复而非运行期恢复。键缺失、空规格、空上下文都是合法状态，
// 只是产生更短或为空的注释。
package xtag
