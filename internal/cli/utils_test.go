package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/search"
)

func sampleResults() []models.SearchResult {
	return []models.SearchResult{
		{
			Content:        "The employer must give written notice before termination of employment.",
			SourceDocument: "employment_contract.txt",
			RelevanceScore: 0.8123,
			DocumentType:   "Contract",
			Citation:       "Contracts - employment_contract.txt",
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, SearchOutput{Query: "termination", Results: sampleResults()}, OutputJSON)
	require.NoError(t, err, "WriteSearchResults(json)")
	var decoded SearchOutput
	require.NoError(t, json.NewDecoder(&buf).Decode(&decoded), "output is not valid JSON")
	assert.Equal(t, "termination", decoded.Query)
	assert.Equal(t, 1, decoded.Total)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "employment_contract.txt", decoded.Results[0].SourceDocument)
}

func TestWriteSearchResults_JSON_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, SearchOutput{Query: "q"}, OutputJSON), "WriteSearchResults(json)")
	assert.Contains(t, buf.String(), `"results": []`, "empty results should encode as an empty array")
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, SearchOutput{Query: "termination", Results: sampleResults()}, OutputText), "WriteSearchResults(text)")
	out := buf.String()
	for _, sub := range []string{"Found 1 passages", "Rank: 1", "Score: 0.8123", "Type: Contract", "Source: employment_contract.txt", "Citation: Contracts", "written notice"} {
		assert.Contains(t, out, sub)
	}
}

func TestWriteSearchResults_textSuggestions(t *testing.T) {
	var buf bytes.Buffer
	out := SearchOutput{Query: "agrement", Suggestions: []string{"agreement"}}
	require.NoError(t, WriteSearchResults(&buf, out, OutputText))
	assert.Contains(t, buf.String(), "No results")
	assert.Contains(t, buf.String(), "Did you mean: agreement")
}

func TestWriteSearchResults_compact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, SearchOutput{Query: "x", Results: sampleResults()}, OutputCompact))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "1\t0.8123\tContract\temployment_contract.txt\t"), "compact output: %q", lines[0])
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{" compact ", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseOutputFormat(%q)", tt.in)
		} else {
			assert.NoError(t, err, "ParseOutputFormat(%q)", tt.in)
		}
		assert.Equal(t, tt.want, got, "ParseOutputFormat(%q)", tt.in)
	}
}

func TestWriteLookupHits(t *testing.T) {
	hits := []models.KeywordHit{{
		Passage: &models.CorpusPassage{
			ID:             "clauses_governing_law_0",
			Content:        "This agreement is governed by the law of England and Wales.",
			Category:       models.CategoryClauses,
			SourceDocument: "governing_law.txt",
			DocumentType:   "Legal Clause",
		},
		Score: 1,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteLookupHits(&buf, "governed", hits, OutputText))
	out := buf.String()
	assert.Contains(t, out, "[1.000] clauses_governing_law_0 (Legal Clause)")
	assert.Contains(t, out, "governed by the law")

	buf.Reset()
	require.NoError(t, WriteLookupHits(&buf, "governed", nil, OutputText))
	assert.Contains(t, buf.String(), "No keyword matches")
}

func TestWriteStatistics(t *testing.T) {
	stats := models.Statistics{
		TotalDocuments: 3,
		Categories:     map[string]int{"statutes": 1, "clauses": 2, "contracts": 0, "precedents": 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteStatistics(&buf, stats, OutputText))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Total passages: 3\n"), "missing total:\n%s", out)
	assert.Less(t, strings.Index(out, "clauses"), strings.Index(out, "statutes"), "categories should be sorted")
}

func TestWriteCategories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, []string{"contracts", "clauses"}, OutputJSON))
	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"contracts", "clauses"}, decoded["categories"])
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, search.Status{Strategy: "tf"}, OutputText))
	assert.Contains(t, buf.String(), "not built")

	buf.Reset()
	st := search.Status{
		Indexed:        true,
		BuildID:        "b-1",
		Strategy:       "tf",
		Dimensions:     42,
		Passages:       7,
		BuiltAt:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		ArtifactsBytes: 2048,
	}
	require.NoError(t, WriteStatus(&buf, st, OutputText))
	for _, sub := range []string{"b-1", "tf (42 dimensions)", "Passages:   7", "2.0 KiB"} {
		assert.Contains(t, buf.String(), sub)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanBytes(tt.n), "HumanBytes(%d)", tt.n)
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		s        string
		maxWords int
		want     string
	}{
		{"a b c", 5, "a b c"},
		{"a b c d", 2, "a b..."},
		{"", 3, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateWords(tt.s, tt.maxWords), "TruncateWords(%q, %d)", tt.s, tt.maxWords)
	}
}
