package corpus

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkSize is the maximum passage length in characters.
const DefaultChunkSize = 1000

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?;:]["')\]]*\s+`)
)

// Chunker packs paragraphs into passages of at most maxChars characters.
type Chunker struct {
	maxChars int
}

// NewChunker creates a chunker with the given size threshold in characters.
// A non-positive size uses DefaultChunkSize.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	return &Chunker{maxChars: maxChars}
}

// Chunk splits text on blank lines and merges consecutive paragraphs until the next one
// would overflow the threshold. Paragraphs longer than the threshold are split on
// sentence boundaries, then on word boundaries.
func (c *Chunker) Chunk(text string) []string {
	var units []string
	for _, para := range paragraphBreak.Split(text, -1) {
		para = Preprocess(para)
		if para == "" {
			continue
		}
		if runeLen(para) <= c.maxChars {
			units = append(units, para)
			continue
		}
		units = append(units, c.splitLong(para)...)
	}
	return pack(units, "\n\n", c.maxChars)
}

// splitLong breaks one oversized paragraph into pieces that each fit the threshold.
func (c *Chunker) splitLong(para string) []string {
	var pieces []string
	for _, sentence := range splitSentences(para) {
		if runeLen(sentence) <= c.maxChars {
			pieces = append(pieces, sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			for runeLen(word) > c.maxChars {
				cut := byteOffset(word, c.maxChars)
				pieces = append(pieces, word[:cut])
				word = word[cut:]
			}
			if word != "" {
				pieces = append(pieces, word)
			}
		}
	}
	return pack(pieces, " ", c.maxChars)
}

// pack greedily concatenates units with sep while the result stays within limit characters.
func pack(units []string, sep string, limit int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	sepLen := runeLen(sep)
	for _, u := range units {
		uLen := runeLen(u)
		if curLen > 0 && curLen+sepLen+uLen > limit {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteString(sep)
			curLen += sepLen
		}
		cur.WriteString(u)
		curLen += uLen
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

func splitSentences(s string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(s, -1) {
		if sentence := strings.TrimSpace(s[start:loc[1]]); sentence != "" {
			out = append(out, sentence)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Preprocess trims text and collapses runs of whitespace into single spaces.
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// byteOffset returns the byte index of the n-th rune in s.
func byteOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
