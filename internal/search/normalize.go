package search

import "github.com/hyperjump/jurisearch/internal/models"

// NormalizeKeywordScores rescales keyword hit scores to [0,1] by the best score.
// The slice is modified in place and returned.
func NormalizeKeywordScores(hits []models.KeywordHit) []models.KeywordHit {
	if len(hits) == 0 {
		return hits
	}
	maxScore := hits[0].Score
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	for i := range hits {
		if maxScore > 0 {
			hits[i].Score /= maxScore
		} else {
			hits[i].Score = 0
		}
	}
	return hits
}
