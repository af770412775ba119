package notify

import "strings"

// Ellipsis marks a truncated comment body in the realtime payload.
const Ellipsis = "…"

// TruncateChars shortens s to at most limit runes including the trailing
// ellipsis, preferring to cut at the last word boundary inside the window.
// Strings already within the limit come back unchanged.
func TruncateChars(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit < 1 {
		return ""
	}

	cut := runes[:limit-1]
	if idx := lastSpace(cut); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(string(cut), " ") + Ellipsis
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
