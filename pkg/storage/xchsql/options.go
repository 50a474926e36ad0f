package xchsql

import (
	"time"

	"github.com/omeyang/qkit/internal/querystat"
)

// =============================================================================
// 慢查询钩子
// =============================================================================

// SlowQueryInfo 包含慢查询的详细信息。
type SlowQueryInfo struct {
	// Query 是执行的查询语句（注释附加后的最终形态）。
	Query string

	// Args 是查询参数。
	Args []any

	// Duration 是查询耗时。
	Duration time.Duration
}

// SlowQueryHook 是慢查询同步回调函数类型。
// 在请求路径上同步执行，钩子内只应做内存级记录。
type SlowQueryHook = querystat.SlowQueryHook[SlowQueryInfo]

// =============================================================================
// 选项模式
// =============================================================================

// Options 包含 ClickHouse 包装器的配置选项。
type Options struct {
	// HealthTimeout 是健康检查的超时时间。
	// 为 0 时使用 context 的超时。
	HealthTimeout time.Duration

	// SlowQueryThreshold 是慢查询阈值。为 0 时禁用慢查询检测。
	SlowQueryThreshold time.Duration

	// SlowQueryHook 是慢查询同步回调函数。
	SlowQueryHook SlowQueryHook
}

// Option 是用于配置 Options 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		HealthTimeout: querystat.DefaultHealthTimeout,
	}
}

// WithHealthTimeout 设置健康检查超时时间。
func WithHealthTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HealthTimeout = d
	}
}

// WithSlowQueryThreshold 设置慢查询阈值。
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *Options) {
		o.SlowQueryThreshold = d
	}
}

// WithSlowQueryHook 设置慢查询同步回调。
func WithSlowQueryHook(hook SlowQueryHook) Option {
	return func(o *Options) {
		o.SlowQueryHook = hook
	}
}
