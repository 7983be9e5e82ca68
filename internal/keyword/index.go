// Package keyword provides passage keyword lookup and query spelling suggestions.
package keyword

import (
	"context"

	"github.com/hyperjump/jurisearch/internal/models"
)

// SearchOptions optional parameters for keyword lookup. Nil means use defaults.
type SearchOptions struct {
	// Category restricts hits to one corpus category. Empty means all categories.
	Category models.Category
	// Limit caps the number of hits. Zero means DefaultLimit.
	Limit int
	// Fuzziness is the maximum edit distance per term (0 disables fuzzy matching, max 2).
	Fuzziness int
}

// DefaultLimit is the number of lookup hits returned when SearchOptions.Limit is zero.
const DefaultLimit = 10

// KeywordIndex defines keyword lookup over indexed passages.
type KeywordIndex interface {
	IndexPassages(ctx context.Context, passages []models.CorpusPassage) error
	Search(ctx context.Context, text string, opts *SearchOptions) ([]*KeywordResult, error)
	// DocCount returns the total number of passages in the index.
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// TermDictionary provides access to the term dictionary for spell checking.
// This interface allows dependency injection for testing.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the number of passages containing a term.
	GetTermFrequency(term string) (int, error)
}
