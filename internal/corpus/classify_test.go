package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperjump/jurisearch/internal/models"
)

func TestClassifyLegalArea(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Employment_Contract.txt", models.AreaEmployment},
		{"termination_clause.txt", models.AreaTermination},
		{"limitation_of_liability.md", models.AreaLiability},
		{"mutual_indemnification.txt", models.AreaLiability},
		{"patent_assignment.txt", models.AreaIntellectualProperty},
		{"ip_ownership.txt", models.AreaIntellectualProperty},
		{"master_services_agreement.txt", models.AreaContract},
		{"employment_termination.txt", models.AreaEmployment},
		{"force_majeure.txt", models.AreaGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyLegalArea(tt.filename), tt.filename)
	}
}

func TestClassifyDocumentType(t *testing.T) {
	tests := []struct {
		cat      models.Category
		filename string
		want     string
	}{
		{models.CategoryContracts, "nda.txt", models.DocTypeContractTemplate},
		{models.CategoryClauses, "governing_law.txt", models.DocTypeLegalClause},
		{models.CategoryPrecedents, "smith_v_jones.txt", models.DocTypeCaseLaw},
		{models.CategoryStatutes, "employment_rights_act.txt", models.DocTypeStatute},
		{models.Category("misc"), "employment_rights_act.txt", models.DocTypeStatute},
		{models.Category("misc"), "smith_v_jones.txt", models.DocTypeCaseLaw},
		{models.Category("misc"), "sales_contract.txt", models.DocTypeContractTemplate},
		{models.Category("misc"), "memo.txt", models.DocTypeGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyDocumentType(tt.cat, tt.filename), "%s/%s", tt.cat, tt.filename)
	}
}
