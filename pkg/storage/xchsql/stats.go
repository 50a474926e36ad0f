package xchsql

// Stats 包含包装器的统计信息。
type Stats struct {
	// PingCount 健康检查次数。
	PingCount int64

	// PingErrors 健康检查失败次数。
	PingErrors int64

	// QueryCount 查询次数（Query/QueryRow/Exec 各计一次）。
	QueryCount int64

	// QueryErrors 查询失败次数。
	QueryErrors int64

	// SlowQueries 慢查询次数。
	SlowQueries int64

	// Pool 底层连接池状态。
	Pool PoolStats
}

// PoolStats 连接池状态。
type PoolStats struct {
	Open  int
	Idle  int
	InUse int
}
