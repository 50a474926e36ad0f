package xtag

import "strings"

// =============================================================================
// 注释定界符剥离
//
// 渲染正文不允许出现能够提前闭合 /*...*/ 的序列：被攻击者影响的上下文值
// （例如来自用户输入的解析器）一旦闭合注释，其后的内容就成为可执行的
// 查询语法。这里采取整体剥离而非编码：
//   - 注释开（ "/*"，可紧跟优化器提示标记 "+" 及其后的空白）
//   - 注释闭（ "*/" ）
//
// 单趟扫描剥离后，残余字符可能重新拼出定界符（如 "//**" 剥掉中间的
// "/*" 后剩 "/*"），因此反复扫描至不动点。每趟有变更时长度至少减 2，
// 循环必然终止，病态嵌套输入（/*/*...*/*/）不会造成放大。
// =============================================================================

// stripCommentDelimiters 移除 s 中所有注释定界符序列，
// 保证结果不含 "/*" 或 "*/" 子串。
func stripCommentDelimiters(s string) string {
	for {
		out, changed := stripOnce(s)
		if !changed {
			return out
		}
		s = out
	}
}

// stripOnce 对 s 做一趟定界符剥离扫描。
func stripOnce(s string) (string, bool) {
	if !strings.Contains(s, "/*") && !strings.Contains(s, "*/") {
		return s, false
	}

	var b strings.Builder
	b.Grow(len(s))
	changed := false
	i := 0
	for i < len(s) {
		// 注释开: "/*"，可选 "+" 提示标记及其后的空白
		if s[i] == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			if i < len(s) && s[i] == '+' {
				i++
				for i < len(s) && isSpace(s[i]) {
					i++
				}
			}
			changed = true
			continue
		}
		// 注释闭: "*/"
		if s[i] == '*' && i+1 < len(s) && s[i+1] == '/' {
			i += 2
			changed = true
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), changed
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
