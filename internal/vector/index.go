// Package vector provides the linear-scan cosine similarity index over passage vectors.
package vector

import "context"

// VectorIndex stores one vector per passage and answers top-k similarity queries.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Vector(id string) ([]float32, bool)
	Size() int
	Dimensions() int
	Close() error
}

// VectorResult is a single similarity hit keyed by passage id.
type VectorResult struct {
	ID    string
	Score float64 // cosine similarity in [-1, 1]
}
