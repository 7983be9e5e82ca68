package ranking

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/models"
)

// lessFunc orders two scored candidates; it reports whether a sorts before b.
type lessFunc func(a, b *scored) bool

// parseSortBy returns the sort key for s, falling back to relevance for unknown keys.
func parseSortBy(s string, logger *zap.Logger) string {
	switch key := strings.ToLower(strings.TrimSpace(s)); key {
	case "", models.SortRelevance:
		return models.SortRelevance
	case models.SortDocumentType, models.SortLegalArea, models.SortAuthority:
		return key
	default:
		logger.Warn("ignoring unknown sort key", zap.String("sortBy", s))
		return models.SortRelevance
	}
}

// orderFor returns the comparator for a sort key. Every comparator ends with the raw
// candidate position, so equal items keep their similarity order.
func orderFor(sortBy string) lessFunc {
	switch sortBy {
	case models.SortDocumentType:
		return func(a, b *scored) bool {
			ta, tb := tierOf(a), tierOf(b)
			if ta != tb {
				return ta > tb
			}
			if a.passage.DocumentType != b.passage.DocumentType {
				return a.passage.DocumentType < b.passage.DocumentType
			}
			return byEnhanced(a, b)
		}
	case models.SortAuthority:
		return func(a, b *scored) bool {
			ta, tb := tierOf(a), tierOf(b)
			if ta != tb {
				return ta > tb
			}
			if a.enhanced != b.enhanced {
				return a.enhanced > b.enhanced
			}
			if a.raw != b.raw {
				return a.raw > b.raw
			}
			return a.position < b.position
		}
	case models.SortLegalArea:
		return func(a, b *scored) bool {
			aa, ab := a.passage.LegalArea, b.passage.LegalArea
			if aa != ab {
				// General sorts after every named area.
				if aa == models.AreaGeneral {
					return false
				}
				if ab == models.AreaGeneral {
					return true
				}
				return aa < ab
			}
			if ta, tb := tierOf(a), tierOf(b); ta != tb {
				return ta > tb
			}
			return byEnhanced(a, b)
		}
	default:
		return byEnhanced
	}
}

func byEnhanced(a, b *scored) bool {
	if a.enhanced != b.enhanced {
		return a.enhanced > b.enhanced
	}
	return a.position < b.position
}

func tierOf(s *scored) int {
	return models.AuthorityTier(s.passage.DocumentType)
}

func sortScored(items []*scored, less lessFunc) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}
