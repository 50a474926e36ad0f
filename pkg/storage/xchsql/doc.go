// Package xchsql 提供带查询注释的 ClickHouse 连接包装器。
//
// # 设计理念
//
// xchsql 不包装 clickhouse-go 的所有 API，而是提供：
//   - 注释注入：Query/QueryRow/Exec/BatchInsert 在下发前经 xtag 注释器装饰
//   - 底层连接直接暴露（Client() 方法，绕过注释路径）
//   - 轻量统计与慢查询检测（querystat 通用实现）
//
// # 快速开始
//
// 使用 clickhouse.Open 建立 driver.Conn 后交给 New 包装，
// 查询路径全部走包装器方法，注释自动附加。
// 详细使用示例参考 example_test.go。
package xchsql
