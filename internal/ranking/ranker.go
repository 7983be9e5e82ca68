package ranking

import (
	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/models"
)

// Ranker turns raw similarity candidates into the final result list: boosts, filters,
// sort, diversity, and citations.
type Ranker struct {
	config   *RankingConfig
	boosters []Booster
	logger   *zap.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLogger sets the logger for ignored filter values and debug-level score breakdowns.
func WithLogger(l *zap.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBoosters replaces the default boosters.
func WithBoosters(boosters []Booster) Option {
	return func(r *Ranker) {
		r.boosters = boosters
	}
}

// NewRanker creates a new Ranker with the given configuration. A nil config uses defaults.
func NewRanker(config *RankingConfig, opts ...Option) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	r := &Ranker{
		config: config,
		logger: zap.NewNop(),
	}
	r.boosters = DefaultBoosters(config)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Score returns the enhanced score of one candidate: the raw score plus every boost.
// The sum is not clamped, so strong matches can exceed 1.0.
func (r *Ranker) Score(query string, c Candidate) float64 {
	return r.score(NewScoringContext(query, c.Passage), c.RawScore)
}

func (r *Ranker) score(ctx *ScoringContext, raw float64) float64 {
	score := raw
	for _, b := range r.boosters {
		score += b.Boost(ctx)
	}
	return score
}

// Breakdown itemizes the boosts applied to one candidate.
func (r *Ranker) Breakdown(query string, c Candidate) *ScoreBreakdown {
	ctx := NewScoringContext(query, c.Passage)
	bd := &ScoreBreakdown{RawScore: c.RawScore, Boosts: make(map[string]float64, len(r.boosters))}
	score := c.RawScore
	for _, b := range r.boosters {
		v := b.Boost(ctx)
		bd.Boosts[b.Name()] = v
		score += v
	}
	bd.EnhancedScore = score
	return bd
}

// Rank scores, filters, orders, and diversifies candidates, returning at most q.TopK
// results. Candidates are expected in raw similarity order; that order breaks ties.
// q.TopK <= 0 means models.DefaultTopK.
func (r *Ranker) Rank(candidates []Candidate, q models.Query) []models.SearchResult {
	k := q.TopK
	if k <= 0 {
		k = models.DefaultTopK
	}
	plan := newFilterPlan(q.Filters, r.config.FuzzyDistance, r.logger)
	less := orderFor(parseSortBy(q.Filters.SortBy, r.logger))

	pool := make([]*scored, 0, len(candidates))
	for i, c := range candidates {
		if c.Passage == nil {
			continue
		}
		ctx := NewScoringContext(q.Text, c.Passage)
		enhanced := r.score(ctx, c.RawScore)
		if !plan.allows(ctx, enhanced) {
			continue
		}
		pool = append(pool, &scored{passage: c.Passage, raw: c.RawScore, enhanced: enhanced, position: i})
	}

	sortScored(pool, less)
	selected := diversify(pool, k, less)

	results := make([]models.SearchResult, len(selected))
	for i, s := range selected {
		results[i] = models.SearchResult{
			Content:        s.passage.Content,
			SourceDocument: s.passage.SourceDocument,
			RelevanceScore: s.enhanced,
			DocumentType:   s.passage.DocumentType,
			Citation:       Citation(s.passage, q.Filters.IncludeCitations),
		}
		if ce := r.logger.Check(zap.DebugLevel, "ranked passage"); ce != nil {
			bd := r.Breakdown(q.Text, Candidate{Passage: s.passage, RawScore: s.raw})
			ce.Write(
				zap.Int("rank", i+1),
				zap.String("id", s.passage.ID),
				zap.Float64("raw_score", bd.RawScore),
				zap.Any("boosts", bd.Boosts),
				zap.Float64("enhanced_score", bd.EnhancedScore))
		}
	}
	return results
}
