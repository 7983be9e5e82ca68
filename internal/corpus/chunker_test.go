package corpus

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_mergesShortParagraphs(t *testing.T) {
	c := NewChunker(100)
	chunks := c.Chunk("First clause.\n\nSecond clause.\n\n\nThird clause.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "First clause.\n\nSecond clause.\n\nThird clause.", chunks[0])
}

func TestChunker_splitsWhenNextParagraphOverflows(t *testing.T) {
	c := NewChunker(30)
	a := strings.Repeat("a", 20)
	b := strings.Repeat("b", 20)
	assert.Equal(t, []string{a, b}, c.Chunk(a+"\n\n"+b))
}

func TestChunker_exactFit(t *testing.T) {
	c := NewChunker(12)
	assert.Len(t, c.Chunk("aaaaa\n\nbbbbb"), 1, "5+2+5 fits in 12")
}

func TestChunker_longParagraph(t *testing.T) {
	c := NewChunker(50)
	para := strings.Repeat("The employer shall give notice. ", 10)
	chunks := c.Chunk(para)
	require.GreaterOrEqual(t, len(chunks), 2, "oversized paragraph should split")
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), 50, ch)
		assert.NotEmpty(t, ch)
	}
}

func TestChunker_longWord(t *testing.T) {
	c := NewChunker(8)
	total := 0
	for _, ch := range c.Chunk(strings.Repeat("é", 20)) {
		n := utf8.RuneCountInString(ch)
		assert.LessOrEqual(t, n, 8, ch)
		total += n
	}
	assert.Equal(t, 20, total, "no characters lost")
}

func TestChunker_empty(t *testing.T) {
	assert.Empty(t, NewChunker(0).Chunk(" \n\n \t\n"))
}

func TestChunker_defaultSize(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, NewChunker(-1).maxChars, "non-positive size should use default")
}

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "The parties agree", Preprocess("  The\tparties\n agree  "))
}
