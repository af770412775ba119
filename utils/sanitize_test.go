package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeStripsScripts(t *testing.T) {
	got := Sanitize(`<p>hello</p><script>alert("x")</script>`)
	require.Contains(t, got, "<p>hello</p>")
	require.NotContains(t, got, "<script>")
}

func TestSanitizeKeepsFormatting(t *testing.T) {
	got := Sanitize(`<b>bold</b> and <a href="https://example.com" rel="nofollow">link</a>`)
	require.Contains(t, got, "<b>bold</b>")
	require.Contains(t, got, "example.com")
}

func TestSanitizePlainStripsAllMarkup(t *testing.T) {
	got := SanitizePlain(`<b>Title</b> with <i>tags</i>`)
	require.False(t, strings.Contains(got, "<"))
	require.Contains(t, got, "Title")
	require.Contains(t, got, "tags")
}
