package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases the title and collapses runs of non-alphanumerics into
// single hyphens, producing a URL-safe topic slug.
func Slugify(title string) string {
	var b strings.Builder
	prevHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
