package utils

import "strings"

func UrlQuery(s string) string { return strings.ReplaceAll(s, " ", "+") }

// Truncate shortens s for log lines without splitting the final rune.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
