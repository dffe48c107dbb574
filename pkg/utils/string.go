package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen bytes and marks the cut with "...".
// It never splits a UTF-8 sequence, so the result may be a few bytes shorter.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return "..."
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// OneLine replaces newlines in s with spaces, for log attributes and table
// cells that must stay on one row.
func OneLine(s string) string {
	out := []byte(s)
	for i, b := range out {
		if b == '\n' || b == '\r' {
			out[i] = ' '
		}
	}
	return string(out)
}
