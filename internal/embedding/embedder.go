// Package embedding turns passage and query text into vectors.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Strategy names the vectorization scheme of an index.
type Strategy string

const (
	// StrategyTF builds term-frequency vectors over a corpus-derived vocabulary.
	StrategyTF Strategy = "tf"
	// StrategyHTTP calls an OpenAI-compatible embeddings endpoint.
	StrategyHTTP Strategy = "http"
	// StrategyONNX runs a local sentence-embedding model through ONNX Runtime.
	StrategyONNX Strategy = "onnx"
)

// Pretrained reports whether s uses an external embedding model rather than a vocabulary.
func (s Strategy) Pretrained() bool {
	return s == StrategyHTTP || s == StrategyONNX
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyTF || s.Pretrained()
}
