package querystat

import "sync/atomic"

// =============================================================================
// 存储集成共用的原子计数器
//
// 三个计数器对应注释查询路径的三个观测维度：健康检查、查询量与
// 错误量、慢查询。全部字段原子操作，零值即可用，无需构造函数。
// =============================================================================

// HealthCounter 统计健康检查次数与失败次数。
type HealthCounter struct {
	pingCount  atomic.Int64
	pingErrors atomic.Int64
}

// IncPing 记录一次健康检查。
func (h *HealthCounter) IncPing() {
	h.pingCount.Add(1)
}

// IncPingError 记录一次健康检查失败。
func (h *HealthCounter) IncPingError() {
	h.pingErrors.Add(1)
}

// PingCount 返回累计健康检查次数。
func (h *HealthCounter) PingCount() int64 {
	return h.pingCount.Load()
}

// PingErrors 返回累计健康检查失败次数。
func (h *HealthCounter) PingErrors() int64 {
	return h.pingErrors.Load()
}

// QueryCounter 统计经注释管线下发的语句总量与失败量。
// 计数在语句交给驱动前递增，失败在驱动返回错误后递增。
type QueryCounter struct {
	queryCount  atomic.Int64
	queryErrors atomic.Int64
}

// IncQuery 记录一次语句下发。
func (q *QueryCounter) IncQuery() {
	q.queryCount.Add(1)
}

// IncQueryError 记录一次语句执行失败。
func (q *QueryCounter) IncQueryError() {
	q.queryErrors.Add(1)
}

// QueryCount 返回累计语句下发次数。
func (q *QueryCounter) QueryCount() int64 {
	return q.queryCount.Load()
}

// QueryErrors 返回累计语句执行失败次数。
func (q *QueryCounter) QueryErrors() int64 {
	return q.queryErrors.Load()
}

// SlowQueryCounter 统计超过阈值的慢查询数量。
type SlowQueryCounter struct {
	count atomic.Int64
}

// Inc 记录一次慢查询。
func (s *SlowQueryCounter) Inc() {
	s.count.Add(1)
}

// Count 返回累计慢查询次数。
func (s *SlowQueryCounter) Count() int64 {
	return s.count.Load()
}
