package embedding

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/pkg/utils"
)

const (
	// MinTokenLength is the shortest token kept by Tokenize.
	MinTokenLength = 3
	// DefaultMinCount is the corpus frequency a token needs to enter the vocabulary.
	DefaultMinCount = 2
)

// Tokenize lowercases text and returns its alphabetic tokens of at least MinTokenLength runes.
// Tokens are split on any rune that is neither a letter nor a digit; tokens containing digits
// are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < MinTokenLength || !isAlpha(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Vocabulary maps tokens to stable vector positions for one index build.
type Vocabulary struct {
	index map[string]int
	terms []string
}

// BuildVocabulary counts tokens across texts and keeps those seen at least minCount times.
// Positions are assigned in lexical token order.
func BuildVocabulary(texts []string, minCount int) *Vocabulary {
	if minCount <= 0 {
		minCount = DefaultMinCount
	}
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			counts[tok]++
		}
	}
	terms := make([]string, 0, len(counts))
	for tok, n := range counts {
		if n >= minCount {
			terms = append(terms, tok)
		}
	}
	sort.Strings(terms)
	v := &Vocabulary{index: make(map[string]int, len(terms)), terms: terms}
	for i, tok := range terms {
		v.index[tok] = i
	}
	return v
}

// NewVocabulary restores a vocabulary from a persisted token to index mapping.
// Indices must be exactly 0..len(m)-1.
func NewVocabulary(m map[string]int) (*Vocabulary, error) {
	terms := make([]string, len(m))
	index := make(map[string]int, len(m))
	for tok, i := range m {
		if i < 0 || i >= len(m) || terms[i] != "" {
			return nil, fmt.Errorf("vocabulary index %d for %q out of range or duplicated", i, tok)
		}
		terms[i] = tok
		index[tok] = i
	}
	return &Vocabulary{index: index, terms: terms}, nil
}

// Size returns the number of tokens, which is also the TF vector dimension.
func (v *Vocabulary) Size() int { return len(v.terms) }

// Lookup returns the position of tok and whether it is in the vocabulary.
func (v *Vocabulary) Lookup(tok string) (int, bool) {
	i, ok := v.index[tok]
	return i, ok
}

// Terms returns tokens ordered by position.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Map returns a copy of the token to position mapping.
func (v *Vocabulary) Map() map[string]int {
	out := make(map[string]int, len(v.index))
	for k, i := range v.index {
		out[k] = i
	}
	return out
}

// TFEmbedder produces L2-normalized term-frequency vectors over a fixed vocabulary.
type TFEmbedder struct {
	vocab *Vocabulary
}

// NewTFEmbedder returns an embedder bound to vocab.
func NewTFEmbedder(vocab *Vocabulary) *TFEmbedder {
	return &TFEmbedder{vocab: vocab}
}

// Vocabulary returns the vocabulary the embedder was built with.
func (e *TFEmbedder) Vocabulary() *Vocabulary { return e.vocab }

// Embed returns count(token)/len(tokens) per vocabulary slot, L2-normalized.
// Out-of-vocabulary tokens count toward the length but fill no slot, so text with no
// vocabulary tokens yields the zero vector.
func (e *TFEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.vocab.Size())
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}
	for _, tok := range tokens {
		if i, ok := e.vocab.Lookup(tok); ok {
			vec[i]++
		}
	}
	n := float32(len(tokens))
	for i := range vec {
		vec[i] /= n
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *TFEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vocabulary size.
func (e *TFEmbedder) Dimensions() int { return e.vocab.Size() }

// Close is a no-op.
func (e *TFEmbedder) Close() error { return nil }

// PassageTexts returns the content of each passage in order.
func PassageTexts(passages []models.CorpusPassage) []string {
	texts := make([]string, len(passages))
	for i := range passages {
		texts[i] = passages[i].Content
	}
	return texts
}
