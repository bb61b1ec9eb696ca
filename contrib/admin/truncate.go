package admin

import "strings"

// TruncateWords keeps the first n whitespace-separated words of s and
// appends marker when words were dropped. Whitespace runs collapse to a
// single space either way.
func TruncateWords(s string, n int, marker string) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	if n < 0 {
		n = 0
	}
	out := strings.Join(words[:n], " ")
	if strings.HasSuffix(out, marker) {
		return out
	}
	return out + marker
}
