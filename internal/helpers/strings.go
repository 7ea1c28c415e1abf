package helpers

import "strings"

// Truncate shortens the given string to the specified length, appending "..." if truncation occurs.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// FirstField returns the first sep-separated element of s with surrounding whitespace removed.
func FirstField(s, sep string) string {
	first, _, _ := strings.Cut(s, sep)
	return strings.TrimSpace(first)
}
