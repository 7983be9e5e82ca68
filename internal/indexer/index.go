package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/keyword"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/ranking"
	"github.com/hyperjump/jurisearch/internal/storage"
	"github.com/hyperjump/jurisearch/internal/vector"
)

// Index is one immutable build of the corpus: passages, their vectors, the embedder that
// produced them, and a keyword index over the same passages. An Index is safe for
// concurrent readers and is replaced wholesale on reindex.
type Index struct {
	manifest storage.Manifest
	passages []models.CorpusPassage
	records  []models.VectorRecord
	byID     map[string]int

	embedder embedding.Embedder
	vocab    *embedding.Vocabulary
	vectors  *vector.MemoryIndex // nil when the build has no dimensions
	keywords *keyword.BleveIndex
	speller  *keyword.SpellChecker

	// mu guards the reader count and the retired flag.
	mu      sync.Mutex
	readers int
	retired bool
}

// NewEmptyIndex returns an index with no passages. Searches on it return no results.
func NewEmptyIndex(strategy embedding.Strategy) *Index {
	return &Index{
		manifest: storage.Manifest{Strategy: string(strategy)},
		byID:     map[string]int{},
	}
}

func newIndex(ctx context.Context, manifest storage.Manifest, passages []models.CorpusPassage, records []models.VectorRecord, embedder embedding.Embedder, vocab *embedding.Vocabulary) (*Index, error) {
	idx := &Index{
		manifest: manifest,
		passages: passages,
		records:  records,
		byID:     make(map[string]int, len(passages)),
		embedder: embedder,
		vocab:    vocab,
	}
	for i := range passages {
		idx.byID[passages[i].ID] = i
	}

	if manifest.Dimensions > 0 && len(records) > 0 {
		vi, err := vector.NewMemoryIndex(manifest.Dimensions)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(records))
		vecs := make([][]float32, len(records))
		for i, r := range records {
			ids[i] = r.PassageID
			vecs[i] = r.Vector
		}
		if err := vi.Add(ctx, ids, vecs); err != nil {
			return nil, err
		}
		idx.vectors = vi
	}

	kw, err := keyword.NewBleveIndex()
	if err != nil {
		return nil, err
	}
	if err := kw.IndexPassages(ctx, passages); err != nil {
		_ = kw.Close()
		return nil, err
	}
	idx.keywords = kw
	idx.speller = keyword.NewSpellChecker(kw)
	return idx, nil
}

// Manifest returns the build metadata.
func (idx *Index) Manifest() storage.Manifest { return idx.manifest }

// Passages returns the indexed passages in corpus order. Callers must not modify them.
func (idx *Index) Passages() []models.CorpusPassage { return idx.passages }

// Passage returns the passage with the given id.
func (idx *Index) Passage(id string) (*models.CorpusPassage, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return &idx.passages[i], true
}

// Size returns the number of passages.
func (idx *Index) Size() int { return len(idx.passages) }

// Embedder returns the embedder queries must be embedded with, or nil for an empty index.
func (idx *Index) Embedder() embedding.Embedder { return idx.embedder }

// Vocabulary returns the TF vocabulary, or nil for pretrained builds.
func (idx *Index) Vocabulary() *embedding.Vocabulary { return idx.vocab }

// Statistics counts passages per category. Every category of the closed set is present,
// with zero when no passage was loaded for it.
func (idx *Index) Statistics() models.Statistics {
	stats := models.Statistics{
		TotalDocuments: len(idx.passages),
		Categories:     make(map[string]int),
	}
	for _, c := range models.Categories() {
		stats.Categories[string(c)] = 0
	}
	for i := range idx.passages {
		stats.Categories[string(idx.passages[i].Category)]++
	}
	return stats
}

// Similar embeds text and returns up to k passages by cosine similarity, in descending
// order. A query vector of all zeros (no vocabulary words in TF mode) returns nil.
func (idx *Index) Similar(ctx context.Context, text string, k int) ([]ranking.Candidate, error) {
	if idx.vectors == nil || idx.embedder == nil || k <= 0 {
		return nil, nil
	}
	q, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, models.ErrDimensionMismatch) || errors.Is(err, models.ErrEmbedding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrEmbedding, err)
	}
	hits, err := idx.vectors.Search(ctx, q, k)
	if err != nil {
		return nil, err
	}
	out := make([]ranking.Candidate, 0, len(hits))
	for _, h := range hits {
		p, ok := idx.Passage(h.ID)
		if !ok {
			continue
		}
		out = append(out, ranking.Candidate{Passage: p, RawScore: h.Score})
	}
	return out, nil
}

// Lookup runs a keyword query over passage content and source names.
func (idx *Index) Lookup(ctx context.Context, text string, opts *keyword.SearchOptions) ([]models.KeywordHit, error) {
	if idx.keywords == nil {
		return nil, nil
	}
	hits, err := idx.keywords.Search(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	out := make([]models.KeywordHit, 0, len(hits))
	for _, h := range hits {
		if p, ok := idx.Passage(h.ID); ok {
			out = append(out, models.KeywordHit{Passage: p, Score: h.Score})
		}
	}
	return out, nil
}

// Suggest returns up to n alternative spellings of text built from corpus terms.
func (idx *Index) Suggest(text string, n int) []string {
	if idx.speller == nil {
		return nil
	}
	return idx.speller.GetTopSuggestions(text, n)
}

// Snapshot returns the persistable form of the index.
func (idx *Index) Snapshot() *storage.Snapshot {
	snap := &storage.Snapshot{
		Manifest: idx.manifest,
		Passages: idx.passages,
		Vectors:  idx.records,
	}
	if idx.vocab != nil {
		snap.Vocabulary = idx.vocab.Map()
	}
	return snap
}

// Acquire registers a reader. It reports false once the index has been retired and
// released by its last reader; the caller must then load the current index again.
// Every successful Acquire must be paired with Release.
func (idx *Index) Acquire() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.retired && idx.readers == 0 {
		return false
	}
	idx.readers++
	return true
}

// Release ends a read started by Acquire. The last reader of a retired index closes it.
func (idx *Index) Release() error {
	idx.mu.Lock()
	idx.readers--
	last := idx.retired && idx.readers == 0
	idx.mu.Unlock()
	if last {
		return idx.close()
	}
	return nil
}

// Retire marks the index as replaced. It is closed immediately when no reader holds it,
// otherwise by the last Release. Retiring twice is a no-op.
func (idx *Index) Retire() error {
	idx.mu.Lock()
	if idx.retired {
		idx.mu.Unlock()
		return nil
	}
	idx.retired = true
	idle := idx.readers == 0
	idx.mu.Unlock()
	if idle {
		return idx.close()
	}
	return nil
}

// Close retires the index. The embedder is owned by the Indexer and stays open.
func (idx *Index) Close() error { return idx.Retire() }

func (idx *Index) close() error {
	if idx.keywords == nil {
		return nil
	}
	return idx.keywords.Close()
}
