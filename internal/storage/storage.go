// Package storage persists built indexes as passage, vector, and vocabulary artifacts.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/jurisearch/internal/models"
)

// Manifest identifies one index build.
type Manifest struct {
	BuildID    string    `json:"buildId"`
	Strategy   string    `json:"strategy"`
	Dimensions int       `json:"dimensions"`
	BuiltAt    time.Time `json:"builtAt"`
	CorpusRoot string    `json:"corpusRoot,omitempty"`
}

// Snapshot is the persisted form of an index: passages, one vector per passage in passage
// order, and the vocabulary for TF builds (nil otherwise).
type Snapshot struct {
	Manifest   Manifest
	Passages   []models.CorpusPassage
	Vectors    []models.VectorRecord
	Vocabulary map[string]int
}

// Validate checks that every passage has exactly one vector of the manifest dimension.
func (s *Snapshot) Validate() error {
	if len(s.Passages) != len(s.Vectors) {
		return fmt.Errorf("%w: %d passages but %d vectors", models.ErrCorruptIndex, len(s.Passages), len(s.Vectors))
	}
	for i := range s.Passages {
		rec := s.Vectors[i]
		if rec.PassageID != s.Passages[i].ID {
			return fmt.Errorf("%w: vector %d belongs to %q, expected %q", models.ErrCorruptIndex, i, rec.PassageID, s.Passages[i].ID)
		}
		if len(rec.Vector) != s.Manifest.Dimensions {
			return fmt.Errorf("%w: vector %q has %d dimensions, manifest has %d", models.ErrDimensionMismatch, rec.PassageID, len(rec.Vector), s.Manifest.Dimensions)
		}
	}
	return nil
}

// IndexStore saves and loads index snapshots.
type IndexStore interface {
	// Save replaces any previously stored snapshot.
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns the stored snapshot, or an error wrapping models.ErrArtifactMissing
	// when any artifact is absent.
	Load(ctx context.Context) (*Snapshot, error)
	// Paths lists the files backing the store, for disk usage reporting.
	Paths() []string
	Close() error
}

// Backend names an IndexStore implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Open returns the IndexStore for backend rooted at path (a directory for the file backend,
// a database file for sqlite).
func Open(backend Backend, path string) (IndexStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (supported: file, sqlite)", backend)
	}
}
