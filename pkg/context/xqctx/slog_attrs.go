package xqctx

import (
	"context"
	"fmt"
	"log/slog"
)

// =============================================================================
// slog 集成
// =============================================================================

// AppendAttrs 将 Store 中的常用键追加到现有属性切片。
// 零分配热路径优化：传入预分配的切片，只追加存在且非空的字段。
func AppendAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	s := FromContext(ctx)
	if s == nil {
		return attrs
	}
	for _, key := range wellKnownKeys {
		v, ok := s.Get(key)
		if !ok || v == nil {
			continue
		}
		switch tv := v.(type) {
		case string:
			if tv != "" {
				attrs = append(attrs, slog.String(key, tv))
			}
		default:
			attrs = append(attrs, slog.String(key, fmt.Sprintf("%v", tv)))
		}
	}
	return attrs
}

// Attrs 从 context 提取常用键，转换为 slog.Attr 切片。
//
// 只返回存在且非空的字段，全部缺失时返回 nil。
// 注意：每次调用会分配新切片。热路径建议使用 AppendAttrs。
func Attrs(ctx context.Context) []slog.Attr {
	attrs := AppendAttrs(make([]slog.Attr, 0, wellKnownFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
