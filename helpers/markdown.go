package helpers

import "strings"

// markdownV2Reserved is the set of characters Telegram MarkdownV2 requires
// to be backslash-escaped when they appear as literal text.
const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 escapes every reserved MarkdownV2 character in text by
// prefixing it with a backslash. All other runes, including multi-byte ones,
// pass through unchanged. Not idempotent: reserved characters are escaped on
// every pass.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TruncateRunes shortens s to at most n runes. Truncation happens on rune
// boundaries so multi-byte characters are never cut in half.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
