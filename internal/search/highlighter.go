package search

import (
	"strings"
	"unicode"
)

// Highlight truncates content to maxLen runes and appends "..." when truncated.
func Highlight(content string, maxLen int) string {
	r := []rune(content)
	if maxLen <= 0 || len(r) <= maxLen {
		return content
	}
	return string(r[:maxLen]) + "..."
}

// Snippet returns a window of at most maxLen runes of content around the first query
// term it contains. Elided text on either side is marked with "...". When no term
// appears, Snippet behaves like Highlight.
func Snippet(content, query string, maxLen int) string {
	r := []rune(content)
	if maxLen <= 0 || len(r) <= maxLen {
		return content
	}
	lower := []rune(strings.ToLower(content))
	at := -1
	for _, term := range strings.FieldsFunc(strings.ToLower(query), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c)
	}) {
		if i := runeIndex(lower, []rune(term)); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		return Highlight(content, maxLen)
	}

	start := max(at-maxLen/4, 0)
	end := min(start+maxLen, len(r))
	start = max(end-maxLen, 0)

	out := strings.TrimSpace(string(r[start:end]))
	if start > 0 {
		out = "..." + out
	}
	if end < len(r) {
		out += "..."
	}
	return out
}

func runeIndex(s, sub []rune) int {
	if len(sub) == 0 || len(sub) > len(s) {
		return -1
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
