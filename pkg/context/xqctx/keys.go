package xqctx

import "github.com/google/uuid"

// =============================================================================
// 常用键常量
// =============================================================================

// 环境上下文常用键，遵循下划线分隔的命名约定。
// 这些键同时用于查询注释片段和日志属性，保持两侧命名一致。
const (
	KeyApplication = "application"
	KeyController  = "controller"
	KeyAction      = "action"
	KeyJob         = "job"
	KeyRequestID   = "request_id"
	KeyDBHost      = "db_host"
	KeyTraceparent = "traceparent"

	// wellKnownFieldCount 常用键数量（用于 slog 属性预分配）
	wellKnownFieldCount = 7
)

// wellKnownKeys 按固定顺序排列的常用键，供 AppendAttrs 遍历。
var wellKnownKeys = [wellKnownFieldCount]string{
	KeyApplication,
	KeyController,
	KeyAction,
	KeyJob,
	KeyRequestID,
	KeyDBHost,
	KeyTraceparent,
}

// =============================================================================
// RequestID 辅助函数
// =============================================================================

// EnsureRequestID 确保 Store 中存在 request_id，不存在时生成 UUID 并写入。
// 返回最终生效的 request_id。
//
// 设计决策: 生成写入会递增 generation（视为一次正常的上下文变更），
// 因此应在工作单元初始化阶段调用，而非查询热路径。
func EnsureRequestID(s *Store) string {
	if s == nil {
		return ""
	}
	if v, ok := s.Get(KeyRequestID); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	id := uuid.NewString()
	s.Set(KeyRequestID, id)
	return id
}
