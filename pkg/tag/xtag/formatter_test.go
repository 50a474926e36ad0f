package xtag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatter(t *testing.T) {
	kind, err := ParseFormatter("legacy")
	require.NoError(t, err)
	assert.Equal(t, FormatterLegacy, kind)

	kind, err = ParseFormatter("structured")
	require.NoError(t, err)
	assert.Equal(t, FormatterStructured, kind)

	for _, bad := range []string{"", "Legacy", "sqlcommenter", "fancy"} {
		_, err := ParseFormatter(bad)
		assert.ErrorIs(t, err, ErrUnsupportedFormatter, "ParseFormatter(%q)", bad)
	}
}

func TestLegacyFormatter(t *testing.T) {
	f := legacyFormatter{}
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"普通字符串", "app", "MyApp", "app='MyApp'"},
		{"单引号转义", "name", "O'Brien", `name='O\'Brien'`},
		{"反斜杠转义", "path", `a\b`, `path='a\\b'`},
		{"反斜杠加引号", "v", `\'`, `v='\\\''`},
		{"布尔字面量", "dry_run", true, "dry_run='true'"},
		{"整数字面量", "attempt", 3, "attempt='3'"},
		{"int64", "id", int64(9000), "id='9000'"},
		{"浮点字面量", "ratio", 0.5, "ratio='0.5'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Fragment(tt.key, tt.value))
		})
	}
}

func TestStructuredFormatter(t *testing.T) {
	f := structuredFormatter{}
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"普通字符串", "app", "MyApp", "app=%27MyApp%27"},
		// 值本身的单引号也被百分号编码
		{"单引号", "name", "O'Brien", "name=%27O%27Brien%27"},
		{"空格编码为%20", "title", "hello world", "title=%27hello%20world%27"},
		{"保留字符", "route", "/users/1?x=y", "route=%27%2Fusers%2F1%3Fx%3Dy%27"},
		{"布尔字面量", "dry_run", false, "dry_run=%27false%27"},
		{"整数字面量", "attempt", 42, "attempt=%2742%27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Fragment(tt.key, tt.value))
		})
	}
}

// =============================================================================
// 模糊测试：任意值经格式化后不得破坏注释结构
// =============================================================================

func FuzzFormatters(f *testing.F) {
	f.Add("MyApp")
	f.Add("O'Brien")
	f.Add(`a\b'c`)
	f.Add("x*/ DROP TABLE users; --")
	f.Add("hello world")
	f.Add("%27")

	f.Fuzz(func(t *testing.T, value string) {
		// 结构化格式：值整体百分号编码，输出中不允许出现裸引号与定界符
		structured := structuredFormatter{}.Fragment("k", value)
		if strings.Contains(structured, "'") {
			t.Fatalf("structured fragment contains raw quote: %q → %q", value, structured)
		}
		if strings.Contains(structured, "/*") || strings.Contains(structured, "*/") {
			t.Fatalf("structured fragment contains delimiter: %q → %q", value, structured)
		}

		// 传统格式：去掉 key=' 前缀和 ' 后缀，内部引号必须全部被反斜杠转义
		legacy := legacyFormatter{}.Fragment("k", value)
		inner := strings.TrimSuffix(strings.TrimPrefix(legacy, "k='"), "'")
		escaped := false
		for _, r := range inner {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '\'':
				t.Fatalf("legacy fragment has unescaped quote: %q → %q", value, legacy)
			}
		}
	})
}

type stringerValue struct{}

func (stringerValue) String() string { return "stringer" }

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "s", formatValue("s"))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "-7", formatValue(-7))
	assert.Equal(t, "1.25", formatValue(1.25))
	assert.Equal(t, "18446744073709551615", formatValue(uint64(1<<64-1)))
	assert.Equal(t, "stringer", formatValue(stringerValue{}))
	// 兜底走 fmt
	assert.Equal(t, "[1 2]", formatValue([]int{1, 2}))
}
