package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingsServer(t *testing.T, dims int, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if status != http.StatusOK {
			http.Error(w, "model overloaded", status)
			return
		}
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var resp embeddingsResponse
		// Return in reverse order so the client has to sort by index.
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := make([]float32, dims)
			vec[i%dims] = 3
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			}{Index: i, Embedding: vec})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPEmbedder_EmbedBatch(t *testing.T) {
	srv := embeddingsServer(t, 4, http.StatusOK)
	defer srv.Close()

	e, err := NewHTTPEmbedder(HTTPConfig{BaseURL: srv.URL + "/", APIKey: "secret", Dimensions: 4})
	require.NoError(t, err)
	defer e.Close()

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, v := range vecs {
		assert.InDelta(t, 1.0, float64(v[i]), 1e-6, "vector %d should be normalized and in input order", i)
	}

	one, err := e.Embed(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, one, 4)
}

func TestHTTPEmbedder_dimensionMismatch(t *testing.T) {
	srv := embeddingsServer(t, 3, http.StatusOK)
	defer srv.Close()
	e, err := NewHTTPEmbedder(HTTPConfig{BaseURL: srv.URL, APIKey: "secret", Dimensions: 4})
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestHTTPEmbedder_errorStatus(t *testing.T) {
	srv := embeddingsServer(t, 4, http.StatusServiceUnavailable)
	defer srv.Close()
	e, err := NewHTTPEmbedder(HTTPConfig{BaseURL: srv.URL, APIKey: "secret", Dimensions: 4})
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, models.ErrEmbedding)
}

func TestNewHTTPEmbedder_validation(t *testing.T) {
	_, err := NewHTTPEmbedder(HTTPConfig{Dimensions: 4})
	assert.ErrorIs(t, err, models.ErrUnsupportedStrategy)
	_, err = NewHTTPEmbedder(HTTPConfig{BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, models.ErrUnsupportedStrategy)
}

func TestNewPretrained(t *testing.T) {
	_, err := NewPretrained(PretrainedConfig{Strategy: StrategyTF})
	assert.ErrorIs(t, err, models.ErrUnsupportedStrategy)

	e, err := NewPretrained(PretrainedConfig{
		Strategy:  StrategyHTTP,
		HTTP:      HTTPConfig{BaseURL: "http://localhost:1", Dimensions: 8},
		CacheSize: 16,
	})
	require.NoError(t, err)
	assert.IsType(t, &CachedEmbedder{}, e)
	assert.Equal(t, 8, e.Dimensions())

	_, err = NewPretrained(PretrainedConfig{Strategy: StrategyONNX})
	assert.ErrorIs(t, err, models.ErrUnsupportedStrategy)
}
