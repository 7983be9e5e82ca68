package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/search"
)

const lookupSnippetLength = 240

type searchResponse struct {
	Query       string                `json:"query"`
	Results     []models.SearchResult `json:"results"`
	Total       int                   `json:"total"`
	Suggestions []string              `json:"suggestions,omitempty"`
	QueryTimeMs int64                 `json:"queryTimeMs"`
}

type lookupHit struct {
	ID             string  `json:"id"`
	SourceDocument string  `json:"sourceDocument"`
	Category       string  `json:"category"`
	DocumentType   string  `json:"documentType"`
	LegalArea      string  `json:"legalArea"`
	Snippet        string  `json:"snippet"`
	Score          float64 `json:"score"`
}

type reindexRequest struct {
	CorpusRoot string `json:"corpusRoot,omitempty"`
}

type statusResponse struct {
	search.Status
	Watching []string `json:"watching,omitempty"`
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var query models.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runSearch(w, r, query)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	query, err := queryFromParams(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.runSearch(w, r, query)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query models.Query) {
	start := time.Now()
	s.logger.Debug("search request", zap.String("query", query.Text), zap.Int("top_k", query.TopK))
	results, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.respondEngineError(w, "search", err)
		return
	}
	resp := searchResponse{
		Query:       query.Text,
		Results:     results,
		Total:       len(results),
		QueryTimeMs: time.Since(start).Milliseconds(),
	}
	if len(results) == 0 {
		resp.Suggestions = s.engine.Suggest(query.Text)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// queryFromParams builds a query from URL parameters named like the JSON body fields.
func queryFromParams(r *http.Request) (models.Query, error) {
	p := r.URL.Query()
	q := models.Query{
		Text: p.Get("query"),
		Filters: models.Filters{
			Category:      p.Get("category"),
			LegalArea:     p.Get("legalArea"),
			DocumentType:  p.Get("documentType"),
			ContentLength: p.Get("contentLengthFilter"),
			SortBy:        p.Get("sortBy"),
		},
	}
	if q.Text == "" {
		q.Text = p.Get("q")
	}
	if v := p.Get("topK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, errors.New("topK must be an integer")
		}
		q.TopK = n
	}
	if v := p.Get("minRelevanceScore"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, errors.New("minRelevanceScore must be a number")
		}
		q.Filters.MinRelevanceScore = &f
	}
	if v := p.Get("includeCitations"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, errors.New("includeCitations must be a boolean")
		}
		q.Filters.IncludeCitations = b
	}
	return q, nil
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query()
	text := p.Get("q")
	limit := 0
	if v := p.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	fuzzy := false
	if v := p.Get("fuzzy"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "fuzzy must be a boolean")
			return
		}
		fuzzy = b
	}
	hits, err := s.engine.Lookup(r.Context(), text, search.LookupOptions{
		Category: p.Get("category"),
		Limit:    limit,
		Fuzzy:    fuzzy,
	})
	if err != nil {
		s.respondEngineError(w, "lookup", err)
		return
	}
	out := make([]lookupHit, len(hits))
	for i, h := range hits {
		out[i] = lookupHit{
			ID:             h.Passage.ID,
			SourceDocument: h.Passage.SourceDocument,
			Category:       string(h.Passage.Category),
			DocumentType:   h.Passage.DocumentType,
			LegalArea:      h.Passage.LegalArea,
			Snippet:        search.Snippet(h.Passage.Content, text, lookupSnippetLength),
			Score:          h.Score,
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": text, "hits": out, "total": len(out)})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"categories": s.engine.Categories()})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Statistics())
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Info("reindex request", zap.String("corpus_root", req.CorpusRoot))
	n, err := s.engine.Reindex(r.Context(), req.CorpusRoot)
	if err != nil {
		s.respondEngineError(w, "reindex", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documentsIndexed": n,
		"buildId":          s.engine.Index().Manifest().BuildID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: s.engine.Status()}
	if s.watch != nil {
		resp.Watching = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondEngineError maps engine error kinds to HTTP statuses. Only invalid input and
// configuration errors expose their message.
func (s *Server) respondEngineError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrCorpusNotFound):
		s.logger.Warn(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrDimensionMismatch), errors.Is(err, models.ErrCorruptIndex):
		s.logger.Error(op+" failed: index is incompatible", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "index is incompatible with the configured embedder; reindex required")
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, op+" failed")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
