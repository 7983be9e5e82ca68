package ranking

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/keyword"
	"github.com/hyperjump/jurisearch/internal/models"
)

// Content length bucket bounds, in runes.
const (
	ShortContentMax  = 200
	MediumContentMax = 500
)

// docTypeAliases maps singular filter words to the document type they name.
var docTypeAliases = map[string]string{
	"statute":     models.DocTypeStatute,
	"regulation":  models.DocTypeStatute,
	"legislation": models.DocTypeStatute,
	"act":         models.DocTypeStatute,
	"case":        models.DocTypeCaseLaw,
	"precedent":   models.DocTypeCaseLaw,
	"judgment":    models.DocTypeCaseLaw,
	"ruling":      models.DocTypeCaseLaw,
	"contract":    models.DocTypeContractTemplate,
	"template":    models.DocTypeContractTemplate,
	"clause":      models.DocTypeLegalClause,
	"provision":   models.DocTypeLegalClause,
}

// areaStopWords are filter words too generic to match content on their own.
var areaStopWords = map[string]struct{}{
	"law": {}, "and": {}, "legal": {}, "general": {},
}

// filterPlan is a validated form of models.Filters. Empty fields impose no constraint.
type filterPlan struct {
	category     models.Category
	legalArea    string
	documentType string
	length       string
	minScore     float64
	hasMinScore  bool
	maxDistance  int
}

// newFilterPlan validates f. Malformed values are logged and dropped, never rejected.
func newFilterPlan(f models.Filters, maxDistance int, logger *zap.Logger) filterPlan {
	plan := filterPlan{
		legalArea:    normalizeText(f.LegalArea),
		documentType: normalizeText(f.DocumentType),
		maxDistance:  maxDistance,
	}

	if c := strings.TrimSpace(f.Category); c != "" {
		if cat, ok := models.ParseCategory(strings.ToLower(c)); ok {
			plan.category = cat
		} else {
			logger.Warn("ignoring unknown category filter", zap.String("category", f.Category))
		}
	}

	switch l := strings.ToLower(strings.TrimSpace(f.ContentLength)); l {
	case "":
	case models.LengthShort, models.LengthMedium, models.LengthLong:
		plan.length = l
	default:
		logger.Warn("ignoring unknown content length filter", zap.String("contentLengthFilter", f.ContentLength))
	}

	if f.MinRelevanceScore != nil {
		if *f.MinRelevanceScore < 0 {
			logger.Warn("ignoring negative minimum relevance score", zap.Float64("minRelevanceScore", *f.MinRelevanceScore))
		} else {
			plan.minScore = *f.MinRelevanceScore
			plan.hasMinScore = true
		}
	}
	return plan
}

// allows reports whether a passage with the given enhanced score passes every filter.
func (f filterPlan) allows(ctx *ScoringContext, enhanced float64) bool {
	p := ctx.Passage
	if f.hasMinScore && enhanced < f.minScore {
		return false
	}
	if f.category != "" && p.Category != f.category {
		return false
	}
	if f.length != "" && LengthBucket(p.Content) != f.length {
		return false
	}
	if f.legalArea != "" && !f.matchesLegalArea(p.LegalArea, ctx.Content) {
		return false
	}
	if f.documentType != "" && !f.matchesDocumentType(p.DocumentType) {
		return false
	}
	return true
}

// matchesLegalArea accepts the passage's own area (exactly or within edit distance), any
// keyword of the area the filter names found in content, or a distinctive filter word
// found in content.
func (f filterPlan) matchesLegalArea(area, content string) bool {
	label := strings.ToLower(area)
	if label == f.legalArea || keyword.WithinDistance(label, f.legalArea, f.maxDistance) {
		return true
	}
	for _, g := range areaGroups {
		if f.namesArea(g.area) && g.matches(content) {
			return true
		}
	}
	for _, w := range words(f.legalArea) {
		if _, stop := areaStopWords[w]; stop || utf8.RuneCountInString(w) < 4 {
			continue
		}
		if strings.Contains(content, w) {
			return true
		}
	}
	return false
}

func (f filterPlan) namesArea(area string) bool {
	label := strings.ToLower(area)
	if label == f.legalArea || keyword.WithinDistance(label, f.legalArea, f.maxDistance) {
		return true
	}
	return utf8.RuneCountInString(f.legalArea) >= 4 && strings.Contains(label, f.legalArea)
}

// matchesDocumentType accepts substrings in either direction, alias words such as
// "precedent" for Case Law, and labels within edit distance.
func (f filterPlan) matchesDocumentType(docType string) bool {
	label := strings.ToLower(docType)
	if label == f.documentType {
		return true
	}
	if utf8.RuneCountInString(f.documentType) >= 3 && strings.Contains(label, f.documentType) {
		return true
	}
	if strings.Contains(f.documentType, label) {
		return true
	}
	for _, w := range words(f.documentType) {
		if target, ok := docTypeAliases[strings.TrimSuffix(w, "s")]; ok && target == docType {
			return true
		}
	}
	return keyword.WithinDistance(label, f.documentType, f.maxDistance)
}

// LengthBucket classifies content as short (< 200 runes), medium (200-499) or long (>= 500).
func LengthBucket(content string) string {
	n := utf8.RuneCountInString(content)
	switch {
	case n < ShortContentMax:
		return models.LengthShort
	case n < MediumContentMax:
		return models.LengthMedium
	default:
		return models.LengthLong
	}
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
