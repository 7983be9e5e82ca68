// Package models defines core data structures for corpus passages, queries, and search results.
package models

// Category is one of the corpus directories a passage was loaded from.
type Category string

const (
	CategoryContracts  Category = "contracts"
	CategoryClauses    Category = "clauses"
	CategoryPrecedents Category = "precedents"
	CategoryStatutes   Category = "statutes"
)

// Document types derived from the category.
const (
	DocTypeContractTemplate = "Contract Template"
	DocTypeLegalClause      = "Legal Clause"
	DocTypeCaseLaw          = "Case Law"
	DocTypeStatute          = "Statute/Regulation"
	DocTypeGeneral          = "Legal Document"
)

// Legal areas inferred from source file names.
const (
	AreaEmployment           = "Employment Law"
	AreaContract             = "Contract Law"
	AreaLiability            = "Liability and Risk"
	AreaIntellectualProperty = "Intellectual Property"
	AreaTermination          = "Contract Termination"
	AreaGeneral              = "General"
)

type categoryInfo struct {
	displayName  string
	documentType string
}

// categoryOrder is the closed category set in walk order.
var categoryOrder = []Category{CategoryContracts, CategoryClauses, CategoryPrecedents, CategoryStatutes}

var categoryTable = map[Category]categoryInfo{
	CategoryContracts:  {displayName: "Contracts", documentType: DocTypeContractTemplate},
	CategoryClauses:    {displayName: "Legal Clauses", documentType: DocTypeLegalClause},
	CategoryPrecedents: {displayName: "Legal Precedents", documentType: DocTypeCaseLaw},
	CategoryStatutes:   {displayName: "Statutes & Regulations", documentType: DocTypeStatute},
}

// authorityTiers ranks document types by legal weight; higher is more authoritative.
var authorityTiers = map[string]int{
	DocTypeStatute:          4,
	DocTypeCaseLaw:          3,
	DocTypeContractTemplate: 2,
	DocTypeLegalClause:      2,
	DocTypeGeneral:          1,
}

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory returns the category named s and whether it is part of the closed set.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := categoryTable[c]
	return c, ok
}

// DisplayName returns the human label for c, or the raw name for unknown categories.
func (c Category) DisplayName() string {
	if info, ok := categoryTable[c]; ok {
		return info.displayName
	}
	return string(c)
}

// DocumentType returns the document type implied by c.
func (c Category) DocumentType() string {
	if info, ok := categoryTable[c]; ok {
		return info.documentType
	}
	return DocTypeGeneral
}

// AuthorityTier returns the authority rank of a document type. Unknown types rank lowest.
func AuthorityTier(documentType string) int {
	if tier, ok := authorityTiers[documentType]; ok {
		return tier
	}
	return 0
}

// CorpusPassage is a paragraph-aligned chunk of a source legal document.
// Passages are immutable once loaded and are regenerated wholesale on reindex.
type CorpusPassage struct {
	ID             string   `json:"id"`
	Content        string   `json:"content"`
	SourceDocument string   `json:"sourceDocument"`
	Category       Category `json:"category"`
	CategoryName   string   `json:"categoryName"`
	LegalArea      string   `json:"legalArea"`
	DocumentType   string   `json:"documentType"`
}

// VectorRecord is the numeric representation of a passage.
type VectorRecord struct {
	PassageID string    `json:"passageId"`
	Vector    []float32 `json:"vector"`
}
