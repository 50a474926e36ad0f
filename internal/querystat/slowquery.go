package querystat

import (
	"context"
	"time"
)

// =============================================================================
// 同步慢查询检测
// =============================================================================

// SlowQueryHook 慢查询同步回调钩子。
// 在请求路径上同步执行，钩子内只应做内存级记录。
type SlowQueryHook[T any] func(ctx context.Context, info T)

// SlowQueryDetector 慢查询检测器。
// Threshold 为 0 时禁用检测，Observe 退化为纯计时 no-op。
type SlowQueryDetector[T any] struct {
	threshold time.Duration
	counter   *SlowQueryCounter
	hook      SlowQueryHook[T]
}

// NewSlowQueryDetector 创建慢查询检测器。
// counter 可为 nil（只触发钩子不计数），hook 可为 nil（只计数不回调）。
func NewSlowQueryDetector[T any](threshold time.Duration, counter *SlowQueryCounter, hook SlowQueryHook[T]) *SlowQueryDetector[T] {
	return &SlowQueryDetector[T]{
		threshold: threshold,
		counter:   counter,
		hook:      hook,
	}
}

// Enabled 报告检测是否启用。
func (d *SlowQueryDetector[T]) Enabled() bool {
	return d != nil && d.threshold > 0
}

// Observe 检查一次查询耗时。超过阈值时递增计数器并触发钩子。
// build 延迟构造钩子负载，只在确认慢查询后调用，避免快路径上的分配。
func (d *SlowQueryDetector[T]) Observe(ctx context.Context, elapsed time.Duration, build func() T) {
	if !d.Enabled() || elapsed < d.threshold {
		return
	}
	if d.counter != nil {
		d.counter.Inc()
	}
	if d.hook != nil {
		d.hook(ctx, build())
	}
}
