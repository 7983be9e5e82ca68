package ranking

import (
	"fmt"
	"unicode/utf8"

	"github.com/hyperjump/jurisearch/internal/models"
)

// Citation formats "{category display name} - {source document}". With detailed set, a
// length indicator is appended: Brief (< 200 runes), Standard (< 500) or Detailed.
func Citation(p *models.CorpusPassage, detailed bool) string {
	name := p.CategoryName
	if name == "" {
		name = p.Category.DisplayName()
	}
	citation := fmt.Sprintf("%s - %s", name, p.SourceDocument)
	if !detailed {
		return citation
	}
	n := utf8.RuneCountInString(p.Content)
	switch {
	case n < ShortContentMax:
		return citation + " (Brief)"
	case n < MediumContentMax:
		return citation + " (Standard)"
	default:
		return citation + " (Detailed)"
	}
}
