package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	assert.Equal(t, "short", Highlight("short", 10))
	assert.Equal(t, "long...", Highlight("long text here", 4))
	assert.Equal(t, "x", Highlight("x", 0), "maxLen 0 should return as-is")
	assert.Equal(t, "Übe...", Highlight("Überweisung", 3), "cuts on runes")
}

func TestSnippet(t *testing.T) {
	content := strings.Repeat("recital ", 20) + "the employer shall give written notice of termination " + strings.Repeat("schedule ", 20)

	got := Snippet(content, "Termination notice", 40)
	assert.Contains(t, got, "notice", "snippet should contain the first matched term")
	assert.True(t, strings.HasPrefix(got, "...") && strings.HasSuffix(got, "..."),
		"snippet should mark elided text on both sides, got %q", got)

	assert.Equal(t, Highlight(content, 10), Snippet(content, "zzz", 10), "no match falls back to Highlight")
	assert.Equal(t, "brief clause", Snippet("brief clause", "clause", 100))
}
