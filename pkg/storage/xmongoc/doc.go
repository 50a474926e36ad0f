// Package xmongoc 提供带查询注释的 MongoDB 集合包装器。
//
// MongoDB 没有 SQL 块注释语法，元数据通过驱动的 comment 选项
// （服务端 $comment，出现在 profiler 与 currentOp 输出中）下发。
// 包装器把 xtag 渲染的注释正文（不含 /* */ 定界符）注入
// Find/Aggregate/CountDocuments 的 comment 选项：
//   - 注入的选项排在调用方选项之前，调用方显式设置的 comment 保持优先
//   - 正文为空（无标签命中）时不注入，不产生空 comment
//
// 底层 *mongo.Collection 经 Client() 直接暴露，绕过注释路径。
package xmongoc
