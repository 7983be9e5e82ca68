package embedding

import (
	"context"
	"strings"
	"sync"

	"github.com/hyperjump/jurisearch/pkg/utils"
)

// MockEmbedder is a deterministic stand-in for a pretrained model. Each lowercased word is
// hashed into one of the dimensions, so texts sharing words get similar vectors.
// It records call counts and batch sizes for assertions.
type MockEmbedder struct {
	dimensions int

	mu         sync.Mutex
	embedCalls int
	batchSizes []int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a normalized bag-of-hashed-words vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.embedCalls++
	e.mu.Unlock()
	return e.vector(text), nil
}

func (e *MockEmbedder) vector(text string) []float32 {
	emb := make([]float32, e.dimensions)
	for _, w := range SplitWords(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if w == "" {
			continue
		}
		emb[HashString(w)%e.dimensions]++
	}
	utils.NormalizeL2(emb)
	return emb
}

// EmbedBatch embeds every text and records the batch size.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batchSizes = append(e.batchSizes, len(texts))
	e.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// EmbedCalls returns how many times Embed was called.
func (e *MockEmbedder) EmbedCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embedCalls
}

// BatchSizes returns the sizes of all EmbedBatch calls in order.
func (e *MockEmbedder) BatchSizes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int, len(e.batchSizes))
	copy(out, e.batchSizes)
	return out
}
