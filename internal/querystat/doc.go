// Package querystat 提供存储集成包共用的查询统计与慢查询检测原语。
//
// 供 xchsql、xsqldb、xmongoc 等包复用：
//   - 原子统计计数器（健康检查、查询、慢查询）
//   - 同步慢查询检测器（阈值 + 钩子）
//   - 健康检查超时 context 辅助函数
//
// 钩子在请求路径上同步执行，任何耗时操作都会直接增加请求延迟，
// 钩子内只应做内存级记录（计数器、channel 投递）。
package querystat
