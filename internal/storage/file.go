package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/models"
)

// Artifact file names inside a FileStore directory.
const (
	PassagesFile   = "passages.json"
	VectorsFile    = "vectors.json"
	VocabularyFile = "vocabulary.json"
)

// FileStore keeps the three artifacts as JSON files in one directory.
type FileStore struct {
	dir string
}

// vectorsDocument is the on-disk layout of vectors.json.
type vectorsDocument struct {
	Manifest
	Vectors map[string][]float32 `json:"vectors"`
}

// NewFileStore returns a store rooted at dir. The directory is created on first Save.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store requires a directory")
	}
	return &FileStore{dir: dir}, nil
}

// Save writes vocabulary.json (TF builds only), passages.json, then vectors.json, each
// through a temporary file and rename. A stale vocabulary.json is removed for pretrained builds.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if snap.Vocabulary != nil {
		if err := writeJSON(filepath.Join(s.dir, VocabularyFile), snap.Vocabulary); err != nil {
			return err
		}
	} else if err := os.Remove(filepath.Join(s.dir, VocabularyFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale vocabulary: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	passages := snap.Passages
	if passages == nil {
		passages = []models.CorpusPassage{}
	}
	if err := writeJSON(filepath.Join(s.dir, PassagesFile), passages); err != nil {
		return err
	}

	doc := vectorsDocument{Manifest: snap.Manifest, Vectors: make(map[string][]float32, len(snap.Vectors))}
	for _, rec := range snap.Vectors {
		doc.Vectors[rec.PassageID] = rec.Vector
	}
	return writeJSON(filepath.Join(s.dir, VectorsFile), doc)
}

// Load reads all artifacts. Vectors are returned in passages.json order.
func (s *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	var doc vectorsDocument
	if err := readJSON(filepath.Join(s.dir, VectorsFile), &doc); err != nil {
		return nil, err
	}
	var passages []models.CorpusPassage
	if err := readJSON(filepath.Join(s.dir, PassagesFile), &passages); err != nil {
		return nil, err
	}

	snap := &Snapshot{Manifest: doc.Manifest, Passages: passages}
	if doc.Strategy == string(embedding.StrategyTF) {
		if err := readJSON(filepath.Join(s.dir, VocabularyFile), &snap.Vocabulary); err != nil {
			return nil, err
		}
	}

	if len(doc.Vectors) != len(passages) {
		return nil, fmt.Errorf("%w: %d passages but %d vectors", models.ErrCorruptIndex, len(passages), len(doc.Vectors))
	}
	snap.Vectors = make([]models.VectorRecord, len(passages))
	for i, p := range passages {
		vec, ok := doc.Vectors[p.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no vector for passage %q", models.ErrCorruptIndex, p.ID)
		}
		snap.Vectors[i] = models.VectorRecord{PassageID: p.ID, Vector: vec}
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Paths returns the artifact files that currently exist.
func (s *FileStore) Paths() []string {
	var out []string
	for _, name := range []string{PassagesFile, VectorsFile, VocabularyFile} {
		p := filepath.Join(s.dir, name)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Close is a no-op for FileStore.
func (s *FileStore) Close() error { return nil }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", models.ErrArtifactMissing, filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", models.ErrCorruptIndex, filepath.Base(path), err)
	}
	return nil
}
