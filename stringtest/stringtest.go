// Package stringtest provides helpers for constructing expected multi-line
// test output with explicit line endings and indentation.
package stringtest

import "strings"

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"line1",
//		"line2",
//		"line3",
//	) // -> "line1\nline2\nline3"
func JoinLF(ss ...string) string {
	var sb strings.Builder

	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}

// Tabs prefixes s with n tab characters. Use this to construct expected
// tab-indented output without hiding the depth inside string literals.
func Tabs(n int, s string) string {
	return strings.Repeat("\t", n) + s
}
