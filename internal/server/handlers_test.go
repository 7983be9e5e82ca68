package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/config"
	"github.com/hyperjump/jurisearch/internal/corpus"
	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/indexer"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/ranking"
	"github.com/hyperjump/jurisearch/internal/search"
	"github.com/hyperjump/jurisearch/internal/storage"
)

type mockWatchService struct {
	dirs []string
}

func (m *mockWatchService) Directories() []string {
	return append([]string(nil), m.dirs...)
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"contracts/employment_contract.txt":  "The employer must give an employment termination notice. Termination takes effect after notice.",
		"statutes/employment_rights_act.txt": "The Employment Rights Act protects employment and sets notice rules.",
		"clauses/governing_law.txt":          "This agreement is governed by the law of England and Wales.",
		"clauses/notices.txt":                "Notices under this agreement must be delivered in writing.",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func newTestServer(t *testing.T, watch WatchService) (*Server, *search.Engine) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	ix, err := indexer.NewIndexer(embedding.StrategyTF, store)
	require.NoError(t, err)
	cfg := &config.SearchConfig{DefaultTopK: 10, MaxTopK: 100, CandidateMultiplier: 5, MinCandidates: 50, SuggestionLimit: 3}
	engine := search.NewEngine(ix, corpus.NewLoader(corpus.DefaultChunkSize), ranking.NewRanker(nil), cfg,
		search.WithCorpusRoot(writeCorpus(t)))
	t.Cleanup(func() { _ = engine.Close() })
	_, err = engine.Reindex(context.Background(), "")
	require.NoError(t, err)
	return NewServer(engine, &config.ServerConfig{Port: 8080}, zap.NewNop(), watch), engine
}

func do(t *testing.T, srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "decode response")
}

func TestHandleSearchPost(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body, err := json.Marshal(models.Query{Text: "employment termination", TopK: 2})
	require.NoError(t, err)
	w := do(t, srv, http.MethodPost, "/api/v1/search", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out searchResponse
	decode(t, w, &out)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Results, 2)
	for _, r := range out.Results {
		assert.True(t, strings.HasPrefix(r.SourceDocument, "employment_"), "unexpected top result %s", r.SourceDocument)
		assert.NotEmpty(t, r.Citation)
		assert.NotEmpty(t, r.DocumentType)
	}
}

func TestHandleSearchPost_resultFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := do(t, srv, http.MethodPost, "/api/v1/search", []byte(`{"query":"this agreement","topK":1}`))
	var raw struct {
		Results []map[string]interface{} `json:"results"`
	}
	decode(t, w, &raw)
	require.Len(t, raw.Results, 1)
	want := []string{"citation", "content", "documentType", "relevanceScore", "sourceDocument"}
	got := make([]string, 0, len(raw.Results[0]))
	for k := range raw.Results[0] {
		got = append(got, k)
	}
	assert.ElementsMatch(t, want, got)
}

func TestHandleSearchGet_filters(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/api/v1/search?q=employment+termination&category=clauses&includeCitations=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out searchResponse
	decode(t, w, &out)
	for _, r := range out.Results {
		assert.Equal(t, models.DocTypeLegalClause, r.DocumentType, "category filter leaked %s", r.SourceDocument)
		assert.True(t, strings.HasSuffix(r.Citation, "(Brief)"), "citation detail missing: %s", r.Citation)
	}
}

func TestHandleSearch_emptyResultsIncludeSuggestions(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/api/v1/search?q=agrement+zzqqxx", nil)
	require.Equal(t, http.StatusOK, w.Code, "an out-of-vocabulary query is not an error")
	var out searchResponse
	decode(t, w, &out)
	require.Empty(t, out.Results)
	found := false
	for _, s := range out.Suggestions {
		if strings.Contains(s, "agreement") {
			found = true
		}
	}
	assert.True(t, found, "suggestions: got %v, want a correction to agreement", out.Suggestions)
}

func TestHandleSearch_badRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		name   string
		method string
		target string
		body   []byte
	}{
		{"blank query", http.MethodPost, "/api/v1/search", []byte(`{"query":"  "}`)},
		{"invalid body", http.MethodPost, "/api/v1/search", []byte(`{`)},
		{"bad topK", http.MethodGet, "/api/v1/search?q=notice&topK=ten", nil},
		{"bad min score", http.MethodGet, "/api/v1/search?q=notice&minRelevanceScore=high", nil},
		{"missing text", http.MethodGet, "/api/v1/search", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleSearch_unknownFilterIgnored(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/api/v1/search?q=notice&sortBy=popularity&contentLengthFilter=huge", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out searchResponse
	decode(t, w, &out)
	assert.NotEmpty(t, out.Results, "unknown filter values should not empty the results")
}

type lookupResponse struct {
	Hits []lookupHit `json:"hits"`
}

func TestHandleLookup(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/api/v1/lookup?q=governed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out lookupResponse
	decode(t, w, &out)
	require.Len(t, out.Hits, 1)
	assert.Equal(t, "governing_law.txt", out.Hits[0].SourceDocument)
	assert.NotEmpty(t, out.Hits[0].Snippet)
	assert.Equal(t, "clauses", out.Hits[0].Category)

	w = do(t, srv, http.MethodGet, "/api/v1/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty lookup")
}

func TestHandleLookup_fuzzy(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := do(t, srv, http.MethodGet, "/api/v1/lookup?q=agrement", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exact lookupResponse
	decode(t, w, &exact)
	assert.Empty(t, exact.Hits, "a misspelling has no exact keyword match")

	w = do(t, srv, http.MethodGet, "/api/v1/lookup?q=agrement&fuzzy=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fuzzy lookupResponse
	decode(t, w, &fuzzy)
	require.Len(t, fuzzy.Hits, 2)
	for _, h := range fuzzy.Hits {
		assert.Equal(t, "clauses", h.Category)
	}

	w = do(t, srv, http.MethodGet, "/api/v1/lookup?q=agrement&fuzzy=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "fuzzy must be a boolean")
}

func TestHandleCategoriesAndStatistics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := do(t, srv, http.MethodGet, "/api/v1/categories", nil)
	var cats struct {
		Categories []string `json:"categories"`
	}
	decode(t, w, &cats)
	assert.Equal(t, []string{"contracts", "clauses", "precedents", "statutes"}, cats.Categories)

	w = do(t, srv, http.MethodGet, "/api/v1/statistics", nil)
	var stats models.Statistics
	decode(t, w, &stats)
	assert.Equal(t, 4, stats.TotalDocuments)
	assert.Equal(t, 2, stats.Categories["clauses"])
	assert.Contains(t, stats.Categories, "precedents", "empty categories are reported")
	assert.Zero(t, stats.Categories["precedents"])
}

func TestHandleReindex(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	before := engine.Index().Manifest().BuildID

	w := do(t, srv, http.MethodPost, "/api/v1/admin/reindex", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		DocumentsIndexed int    `json:"documentsIndexed"`
		BuildID          string `json:"buildId"`
	}
	decode(t, w, &out)
	assert.Equal(t, 4, out.DocumentsIndexed)
	assert.NotEqual(t, before, out.BuildID, "reindex publishes a new build")
}

func TestHandleReindex_missingRoot(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	body, err := json.Marshal(reindexRequest{CorpusRoot: filepath.Join(t.TempDir(), "absent")})
	require.NoError(t, err)
	w := do(t, srv, http.MethodPost, "/api/v1/admin/reindex", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 4, engine.Statistics().TotalDocuments, "failed reindex must keep the previous index")
}

func TestRespondEngineError_hidesInternalDetail(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := httptest.NewRecorder()
	srv.respondEngineError(w, "search", models.ErrDimensionMismatch)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "dimension", "body leaks internal detail")
}

func TestHandleStatus(t *testing.T) {
	mock := &mockWatchService{dirs: []string{"/srv/corpus"}}
	srv, _ := newTestServer(t, mock)
	w := do(t, srv, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out statusResponse
	decode(t, w, &out)
	assert.True(t, out.Indexed)
	assert.Equal(t, 4, out.Passages)
	assert.Equal(t, "tf", out.Strategy)
	assert.Positive(t, out.ArtifactsBytes)
	assert.Equal(t, []string{"/srv/corpus"}, out.Watching)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
