// Package storage 提供带注释注入的存储客户端封装子包。
//
// 子包列表：
//   - xsqldb: database/sql (sqlx) 封装，SQL 下发前附加注释
//   - xchsql: ClickHouse 客户端封装，SQL 下发前附加注释
//   - xmongoc: MongoDB 集合封装，注释正文作为 comment 选项下发
//
// 设计原则：
//   - 提供统一的接口抽象，Client() 暴露底层客户端
//   - 注释注入对调用方透明，失败不阻断查询
//   - 内置查询计数与慢查询检测
package storage
