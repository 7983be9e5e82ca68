package models

import (
	"fmt"
	"strings"
)

const (
	// DefaultTopK is the result count used when a query does not specify one.
	DefaultTopK = 10
	// MaxTopK caps the result count of a single query.
	MaxTopK = 100
)

// Sort keys accepted in Filters.SortBy.
const (
	SortRelevance    = "relevance"
	SortDocumentType = "document_type"
	SortLegalArea    = "legal_area"
	SortAuthority    = "authority"
)

// Content length buckets accepted in Filters.ContentLength.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Filters narrows and orders the results of a query. Unknown values are ignored by the ranker.
type Filters struct {
	Category          string   `json:"category,omitempty"`
	LegalArea         string   `json:"legalArea,omitempty"`
	DocumentType      string   `json:"documentType,omitempty"`
	ContentLength     string   `json:"contentLengthFilter,omitempty"`
	MinRelevanceScore *float64 `json:"minRelevanceScore,omitempty"`
	SortBy            string   `json:"sortBy,omitempty"`
	IncludeCitations  bool     `json:"includeCitations,omitempty"`
}

// Query is a single search request.
type Query struct {
	Text    string  `json:"query"`
	TopK    int     `json:"topK,omitempty"`
	Filters Filters `json:"filters"`
}

// Validate trims the query text and normalizes TopK.
// Returns ErrInvalidQuery if the text is blank.
func (q *Query) Validate() error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidQuery)
	}
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	if q.TopK > MaxTopK {
		q.TopK = MaxTopK
	}
	return nil
}
