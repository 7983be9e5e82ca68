package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/jurisearch/internal/models"
)

func testPassages() []models.CorpusPassage {
	return []models.CorpusPassage{
		{ID: "contracts_employment_agreement_0", Content: "The employer may give notice of termination of employment.", SourceDocument: "employment_agreement.txt", Category: models.CategoryContracts, DocumentType: models.DocTypeContractTemplate},
		{ID: "clauses_indemnity_0", Content: "Each party shall indemnify the other against third party claims.", SourceDocument: "indemnity.txt", Category: models.CategoryClauses, DocumentType: models.DocTypeLegalClause},
		{ID: "clauses_termination_0", Content: "Either party may terminate on thirty days written notice.", SourceDocument: "termination.txt", Category: models.CategoryClauses, DocumentType: models.DocTypeLegalClause},
	}
}

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = idx.Close()
	})
	require.NoError(t, idx.IndexPassages(context.Background(), testPassages()))
	return idx
}

func hitIDs(results []*KeywordResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestBleveIndex_SearchFindsContent(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), "indemnify", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"clauses_indemnity_0"}, hitIDs(results))
}

func TestBleveIndex_SearchFindsSource(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), "agreement", nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "contracts_employment_agreement_0", results[0].ID, "the employment agreement matches on its source name")
}

func TestBleveIndex_SearchCategoryFilter(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), "notice", &SearchOptions{Category: models.CategoryClauses})
	require.NoError(t, err)
	assert.Equal(t, []string{"clauses_termination_0"}, hitIDs(results))
}

func TestBleveIndex_SearchFuzzy(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	results, err := idx.Search(ctx, "indemnfy", nil)
	require.NoError(t, err)
	assert.Empty(t, results, "exact search should not match a misspelling")

	results, err = idx.Search(ctx, "indemnfy", &SearchOptions{Fuzziness: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"clauses_indemnity_0"}, hitIDs(results))
}

func TestBleveIndex_SearchLimitAndEmpty(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	results, err := idx.Search(ctx, "party notice", &SearchOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = idx.Search(ctx, "   ", nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestBleveIndex_DocCountAndTerms(t *testing.T) {
	idx := newTestIndex(t)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	terms, err := idx.GetAllTerms()
	require.NoError(t, err)
	assert.Contains(t, terms, "termination")

	freq, err := idx.GetTermFrequency("notice")
	require.NoError(t, err)
	assert.Equal(t, 2, freq)
}
