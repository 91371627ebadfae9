package parser

import "strings"

// Lines splits a page body on newlines. A trailing "\r" is left on each
// line; callers that need exact text trim it themselves.
func Lines(document string) []string {
	return strings.Split(document, "\n")
}

// FirstLine returns the first line containing pattern.
func FirstLine(document, pattern string) (string, bool) {
	for _, l := range Lines(document) {
		if strings.Contains(l, pattern) {
			return l, true
		}
	}
	return "", false
}

// MatchingLines returns every line containing pattern, in document order.
func MatchingLines(document, pattern string) []string {
	var out []string
	for _, l := range Lines(document) {
		if strings.Contains(l, pattern) {
			out = append(out, l)
		}
	}
	return out
}

// LineIndex returns the zero-based index of the first line containing pattern.
func LineIndex(lines []string, pattern string) (int, bool) {
	for i, l := range lines {
		if strings.Contains(l, pattern) {
			return i, true
		}
	}
	return -1, false
}
