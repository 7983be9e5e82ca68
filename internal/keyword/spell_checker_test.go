package keyword

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTermDictionary is a mock implementation of TermDictionary for testing.
type mockTermDictionary struct {
	terms       map[string]int // term -> frequency
	getAllError error
}

func (m *mockTermDictionary) GetAllTerms() ([]string, error) {
	if m.getAllError != nil {
		return nil, m.getAllError
	}
	result := make([]string, 0, len(m.terms))
	for term := range m.terms {
		result = append(result, term)
	}
	return result, nil
}

func (m *mockTermDictionary) GetTermFrequency(term string) (int, error) {
	return m.terms[term], nil
}

func legalDictionary() *mockTermDictionary {
	return &mockTermDictionary{terms: map[string]int{
		"employment":  12,
		"termination": 8,
		"indemnity":   5,
		"identity":    1,
		"notice":      9,
	}}
}

func TestSpellChecker_defaults(t *testing.T) {
	sc := NewSpellChecker(legalDictionary())
	assert.Equal(t, []int{2, 1, 5}, []int{sc.maxDistance, sc.minFreq, sc.maxSuggestions})

	sc = NewSpellChecker(legalDictionary(), WithMaxDistance(1), WithMinFrequency(3), WithMaxSuggestions(2))
	assert.Equal(t, []int{1, 3, 2}, []int{sc.maxDistance, sc.minFreq, sc.maxSuggestions})
}

func TestSpellChecker_Check(t *testing.T) {
	sc := NewSpellChecker(legalDictionary())

	result, err := sc.Check("Employmnt terminaton")
	require.NoError(t, err)
	require.True(t, result.HasCorrections)
	assert.Equal(t, "employment termination", result.CorrectedQuery)
	assert.Equal(t, []string{"employmnt", "terminaton"}, result.MisspelledTerms)
}

func TestSpellChecker_KnownAndShortTermsUntouched(t *testing.T) {
	sc := NewSpellChecker(legalDictionary())

	result, err := sc.Check("notice of employment")
	require.NoError(t, err)
	assert.False(t, result.HasCorrections, "unexpected corrections: %+v", result)
}

func TestSpellChecker_SuggestRanksByFrequency(t *testing.T) {
	sc := NewSpellChecker(legalDictionary())

	got := sc.Suggest("indentity")
	require.GreaterOrEqual(t, len(got), 2, "want indemnity and identity, got %+v", got)
	assert.Equal(t, "indemnity", got[0].Term, "the more frequent term ranks first")
}

func TestSpellChecker_MinFrequency(t *testing.T) {
	sc := NewSpellChecker(legalDictionary(), WithMinFrequency(2))
	for _, s := range sc.Suggest("identiy") {
		assert.NotEqual(t, "identity", s.Term, "identity has frequency 1 and should be filtered")
	}
}

func TestSpellChecker_GetTopSuggestions(t *testing.T) {
	sc := NewSpellChecker(legalDictionary())

	got := sc.GetTopSuggestions("terminaton notice", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "termination notice", got[0], "corrected query comes first")
	assert.Nil(t, sc.GetTopSuggestions("notice", 3), "a fully known query should have no suggestions")
}

func TestSpellChecker_DictionaryError(t *testing.T) {
	sc := NewSpellChecker(&mockTermDictionary{getAllError: errors.New("boom")})
	_, err := sc.Check("anything")
	assert.Error(t, err)
	assert.Nil(t, sc.Suggest("anything"))
}
