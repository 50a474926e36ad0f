package xtag

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// =============================================================================
// 格式化器
// =============================================================================

// FormatterKind 是格式化器标识。
type FormatterKind string

// 支持的格式化器。
const (
	// FormatterLegacy 传统键值对风格：key='escaped-value'。
	FormatterLegacy FormatterKind = "legacy"

	// FormatterStructured 结构化注释风格：key=%27percent-encoded-value%27。
	// 值经 URL 组件编码后包裹在百分号编码的单引号中，
	// 便于跨服务的结构化注释工具链统一解析。
	FormatterStructured FormatterKind = "structured"
)

// ParseFormatter 解析格式化器标识，不支持的标识返回 ErrUnsupportedFormatter。
// 配置层（文件/命令行）在加载时调用，保证选择即失败而非推迟到首次渲染。
func ParseFormatter(kind string) (FormatterKind, error) {
	switch FormatterKind(kind) {
	case FormatterLegacy:
		return FormatterLegacy, nil
	case FormatterStructured:
		return FormatterStructured, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormatter, kind)
	}
}

// Formatter 将 (key, value) 对格式化为注释片段。
// 缺失值（nil/空串）的跳过在渲染管线处理，格式化器只接收已判定存在的值。
type Formatter interface {
	// Fragment 生成单个片段。片段之间由渲染管线以逗号连接。
	Fragment(key string, value any) string
}

// newFormatter 按标识构造格式化器。
func newFormatter(kind FormatterKind) (Formatter, error) {
	switch kind {
	case FormatterLegacy:
		return legacyFormatter{}, nil
	case FormatterStructured:
		return structuredFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormatter, string(kind))
	}
}

// =============================================================================
// 值的文本化
// =============================================================================

// formatValue 将任意标签值转为文本。布尔与数值使用字面 token 形式，
// 避免 fmt 反射路径的常见类型走 strconv 快速路径。
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// =============================================================================
// legacy 格式化器
// =============================================================================

// legacyFormatter 生成 key='value' 片段，值内的单引号与反斜杠以反斜杠转义。
type legacyFormatter struct{}

var legacyEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func (legacyFormatter) Fragment(key string, value any) string {
	return key + "='" + legacyEscaper.Replace(formatValue(value)) + "'"
}

// =============================================================================
// structured 格式化器
// =============================================================================

// structuredFormatter 生成 key=%27encoded%27 片段。
// 值先文本化，再按 URL 组件规则百分号编码，最后包裹编码后的单引号。
type structuredFormatter struct{}

func (structuredFormatter) Fragment(key string, value any) string {
	return key + "=%27" + encodeComponent(formatValue(value)) + "%27"
}

// encodeComponent 按 URL 组件规则编码。
// url.QueryEscape 将空格编码为 "+"（表单规则），组件规则要求 "%20"，
// 这里做一次替换修正。
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
