package util

import (
	"strings"
	"unicode"
)

// Slugify 將名稱轉成 url-safe slug
// 連續的非英數字元壓成單一個 '-'
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // 開頭不補 '-'

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
