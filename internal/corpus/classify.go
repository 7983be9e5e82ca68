package corpus

import (
	"strings"

	"github.com/hyperjump/jurisearch/internal/models"
)

type keywordRule struct {
	keywords []string
	label    string
}

// legalAreaRules is evaluated in order; the first rule with a keyword contained in the
// lowercased file name wins.
var legalAreaRules = []keywordRule{
	{keywords: []string{"employment", "employee", "labour", "labor"}, label: models.AreaEmployment},
	{keywords: []string{"termination", "terminate"}, label: models.AreaTermination},
	{keywords: []string{"liability", "indemn", "warranty", "risk"}, label: models.AreaLiability},
	{keywords: []string{"intellectual", "patent", "copyright", "trademark", "ip_", "licens"}, label: models.AreaIntellectualProperty},
	{keywords: []string{"contract", "agreement", "lease"}, label: models.AreaContract},
}

// documentTypeRules classify files whose category carries no document type.
var documentTypeRules = []keywordRule{
	{keywords: []string{"statute", "_act", "regulation", "code"}, label: models.DocTypeStatute},
	{keywords: []string{"_v_", "case", "judgment", "ruling"}, label: models.DocTypeCaseLaw},
	{keywords: []string{"clause"}, label: models.DocTypeLegalClause},
	{keywords: []string{"template", "agreement", "contract"}, label: models.DocTypeContractTemplate},
}

// ClassifyLegalArea infers the legal area of a source file from its name.
func ClassifyLegalArea(filename string) string {
	return firstMatch(legalAreaRules, filename, models.AreaGeneral)
}

// ClassifyDocumentType returns the document type of a file in category. Categories in the
// closed set determine the type; other categories fall back to file name keywords.
func ClassifyDocumentType(category models.Category, filename string) string {
	if _, ok := models.ParseCategory(string(category)); ok {
		return category.DocumentType()
	}
	return firstMatch(documentTypeRules, filename, models.DocTypeGeneral)
}

func firstMatch(rules []keywordRule, filename, fallback string) string {
	name := strings.ToLower(filename)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.label
			}
		}
	}
	return fallback
}
