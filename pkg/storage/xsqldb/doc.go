// Package xsqldb 提供带查询注释的 database/sql（sqlx）包装器。
//
// # 设计理念
//
// xsqldb 不替代 sqlx，只在查询下发路径插入一层注释装饰：
//   - ExecContext/QueryxContext/GetContext/SelectContext 在下发前经
//     xtag 注释器附加元数据注释
//   - 底层 *sqlx.DB 直接暴露（Client() 方法，绕过注释路径）
//   - 轻量统计与慢查询检测（querystat 通用实现）
//
// 驱动无关：MySQL、PostgreSQL 等任何 database/sql 驱动均可，
// 调用方自行 blank import 所需驱动。
package xsqldb
