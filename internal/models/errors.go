package models

import "errors"

// Error kinds surfaced by the search core. Callers translate them with errors.Is.
var (
	// ErrCorpusNotFound means the configured corpus root does not exist.
	ErrCorpusNotFound = errors.New("corpus root not found")
	// ErrDimensionMismatch means a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrArtifactMissing means a persisted index artifact is absent.
	ErrArtifactMissing = errors.New("index artifact missing")
	// ErrCorruptIndex means persisted artifacts are present but inconsistent with each other.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
	// ErrInvalidQuery means the query failed validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbedding means the embedding model failed to produce a vector.
	ErrEmbedding = errors.New("embedding failed")
	// ErrUnsupportedStrategy means the configured embedding strategy is unknown or unavailable.
	ErrUnsupportedStrategy = errors.New("unsupported embedding strategy")
)
