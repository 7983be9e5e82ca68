package search

import (
	"github.com/hyperjump/jurisearch/internal/config"
	"github.com/hyperjump/jurisearch/internal/models"
)

// ProcessQuery validates the query and applies the configured result limits.
func ProcessQuery(query *models.Query, cfg *config.SearchConfig) error {
	if query.TopK <= 0 && cfg != nil {
		query.TopK = cfg.DefaultTopK
	}
	if err := query.Validate(); err != nil {
		return err
	}
	if cfg != nil && cfg.MaxTopK > 0 && query.TopK > cfg.MaxTopK {
		query.TopK = cfg.MaxTopK
	}
	return nil
}

// candidatePoolSize is how many raw neighbours are ranked for a top-k query. Filters and
// diversity run after retrieval, so the pool is wider than k.
func candidatePoolSize(k int, cfg *config.SearchConfig) int {
	if cfg == nil {
		return k
	}
	mult := cfg.CandidateMultiplier
	if mult <= 0 {
		mult = 1
	}
	return max(k*mult, cfg.MinCandidates)
}
