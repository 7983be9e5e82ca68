// Package ranking re-ranks similarity candidates with legal-domain boosts, filters,
// document-type diversity, sort orders, and citations.
package ranking

import (
	"strings"

	"github.com/hyperjump/jurisearch/internal/models"
)

// Candidate is a passage returned by the similarity search together with its raw cosine score.
type Candidate struct {
	Passage  *models.CorpusPassage
	RawScore float64
}

// ScoringContext holds the normalized query and passage text shared by every booster.
type ScoringContext struct {
	Query   string // lowercase, whitespace-collapsed query text
	Passage *models.CorpusPassage
	Content string // lowercase, whitespace-collapsed passage content
}

// NewScoringContext normalizes query and passage text once per candidate.
func NewScoringContext(query string, p *models.CorpusPassage) *ScoringContext {
	return &ScoringContext{
		Query:   normalizeText(query),
		Passage: p,
		Content: normalizeText(p.Content),
	}
}

// Booster adds a score increment to a candidate.
type Booster interface {
	Name() string
	Boost(ctx *ScoringContext) float64
}

// ScoreBreakdown itemizes how an enhanced score was computed.
type ScoreBreakdown struct {
	RawScore      float64
	Boosts        map[string]float64
	EnhancedScore float64
}

// scored is a candidate that survived filtering, carrying its enhanced score and its
// position in the raw candidate list for stable tie-breaking.
type scored struct {
	passage  *models.CorpusPassage
	raw      float64
	enhanced float64
	position int
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
