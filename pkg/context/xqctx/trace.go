package xqctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// OpenTelemetry 集成
//
// traceparent 是 W3C Trace Context 规范定义的跨服务追踪标识，
// 结构化注释工具链（跨服务的查询归因）依赖此字段关联查询与调用链。
// =============================================================================

// Traceparent 从 context 中的 OpenTelemetry span 构造 W3C traceparent 字符串。
// 格式: 00-{trace-id}-{span-id}-{trace-flags}。
// span 无效（未开启追踪）时返回空字符串。
func Traceparent(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return "00-" + sc.TraceID().String() + "-" + sc.SpanID().String() + "-" + sc.TraceFlags().String()
}

// CaptureTraceparent 将当前 span 的 traceparent 写入 Store 的 KeyTraceparent。
// span 无效时为 no-op，返回 false。
//
// 设计决策: traceparent 以普通键值进入 Store 而非在渲染时动态读取，
// 这样它与其他键共用同一套 generation 失效机制——span 切换时由
// 中间件重新 Capture，缓存自然失效，不需要为追踪字段单独开洞。
func CaptureTraceparent(ctx context.Context, s *Store) bool {
	if s == nil {
		return false
	}
	tp := Traceparent(ctx)
	if tp == "" {
		return false
	}
	s.Set(KeyTraceparent, tp)
	return true
}
