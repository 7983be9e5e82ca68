// Package indexer builds, persists, and loads vector indexes over corpus passages.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/storage"
	"github.com/hyperjump/jurisearch/pkg/utils"
)

// DefaultBatchSize is the number of passages sent to a pretrained embedder per call.
const DefaultBatchSize = 32

// Indexer turns passages into an Index with the configured embedding strategy and moves
// indexes to and from an IndexStore.
type Indexer struct {
	strategy   embedding.Strategy
	pretrained embedding.Embedder
	store      storage.IndexStore
	batchSize  int
	minCount   int
	logger     *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for build and load events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithPretrained sets the embedder used by the http and onnx strategies.
func WithPretrained(e embedding.Embedder) IndexerOption {
	return func(ix *Indexer) { ix.pretrained = e }
}

// WithBatchSize sets how many passages are embedded per pretrained call.
func WithBatchSize(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// WithMinTokenCount sets the corpus frequency a token needs to enter the TF vocabulary.
func WithMinTokenCount(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.minCount = n
		}
	}
}

// NewIndexer creates an indexer for strategy. store may be nil for build-only use.
// Pretrained strategies require WithPretrained.
func NewIndexer(strategy embedding.Strategy, store storage.IndexStore, opts ...IndexerOption) (*Indexer, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedStrategy, strategy)
	}
	ix := &Indexer{
		strategy:  strategy,
		store:     store,
		batchSize: DefaultBatchSize,
		minCount:  embedding.DefaultMinCount,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	if strategy.Pretrained() && ix.pretrained == nil {
		return nil, fmt.Errorf("%w: strategy %q needs a pretrained embedder", models.ErrUnsupportedStrategy, strategy)
	}
	return ix, nil
}

// Strategy returns the configured embedding strategy.
func (ix *Indexer) Strategy() embedding.Strategy { return ix.strategy }

// Store returns the artifact store, or nil for a build-only indexer.
func (ix *Indexer) Store() storage.IndexStore { return ix.store }

// Build embeds every passage and returns a new Index. corpusRoot is recorded in the
// manifest only.
func (ix *Indexer) Build(ctx context.Context, passages []models.CorpusPassage, corpusRoot string) (*Index, error) {
	start := time.Now()
	manifest := storage.Manifest{
		BuildID:    uuid.NewString(),
		Strategy:   string(ix.strategy),
		BuiltAt:    start.UTC(),
		CorpusRoot: corpusRoot,
	}

	var (
		embedder embedding.Embedder
		vocab    *embedding.Vocabulary
		vectors  [][]float32
		err      error
	)
	if ix.strategy == embedding.StrategyTF {
		vocab = embedding.BuildVocabulary(embedding.PassageTexts(passages), ix.minCount)
		tf := embedding.NewTFEmbedder(vocab)
		embedder = tf
		vectors, err = tf.EmbedBatch(ctx, embedding.PassageTexts(passages))
	} else {
		embedder = ix.pretrained
		vectors, err = ix.embedPretrained(ctx, passages)
	}
	if err != nil {
		return nil, err
	}
	manifest.Dimensions = embedder.Dimensions()

	records := make([]models.VectorRecord, len(passages))
	for i := range passages {
		if len(vectors[i]) != manifest.Dimensions {
			return nil, fmt.Errorf("%w: passage %q has %d dimensions, embedder has %d",
				models.ErrDimensionMismatch, passages[i].ID, len(vectors[i]), manifest.Dimensions)
		}
		records[i] = models.VectorRecord{PassageID: passages[i].ID, Vector: vectors[i]}
	}

	idx, err := newIndex(ctx, manifest, passages, records, embedder, vocab)
	if err != nil {
		return nil, err
	}
	ix.logger.Info("index built",
		zap.String("build_id", manifest.BuildID),
		zap.String("strategy", manifest.Strategy),
		zap.Int("passages", len(passages)),
		zap.Int("dimensions", manifest.Dimensions),
		zap.Duration("elapsed", time.Since(start)))
	return idx, nil
}

// embedPretrained embeds passages in batches and re-normalizes every returned vector.
func (ix *Indexer) embedPretrained(ctx context.Context, passages []models.CorpusPassage) ([][]float32, error) {
	texts := embedding.PassageTexts(passages)
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += ix.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+ix.batchSize, len(texts))
		batch, err := ix.pretrained.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed passages %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d passages", models.ErrEmbedding, len(batch), end-start)
		}
		for _, vec := range batch {
			v := make([]float32, len(vec))
			copy(v, vec)
			utils.NormalizeL2(v)
			out = append(out, v)
		}
		ix.logger.Debug("embedded batch", zap.Int("from", start), zap.Int("to", end))
	}
	return out, nil
}

// Persist writes idx to the store. It does nothing for a build-only indexer.
func (ix *Indexer) Persist(ctx context.Context, idx *Index) error {
	if ix.store == nil {
		return nil
	}
	if err := ix.store.Save(ctx, idx.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}
	return nil
}

// Load reads the persisted index. Missing artifacts, or artifacts built with another
// strategy, are not an error: Load returns an empty index and loaded=false so the caller
// can rebuild. Inconsistent artifacts and dimension mismatches are returned as errors.
func (ix *Indexer) Load(ctx context.Context) (idx *Index, loaded bool, err error) {
	if ix.store == nil {
		return NewEmptyIndex(ix.strategy), false, nil
	}
	snap, err := ix.store.Load(ctx)
	if errors.Is(err, models.ErrArtifactMissing) {
		ix.logger.Info("no persisted index", zap.Error(err))
		return NewEmptyIndex(ix.strategy), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if snap.Manifest.Strategy != string(ix.strategy) {
		ix.logger.Warn("persisted index uses a different strategy, ignoring it",
			zap.String("persisted", snap.Manifest.Strategy),
			zap.String("configured", string(ix.strategy)))
		return NewEmptyIndex(ix.strategy), false, nil
	}

	var (
		embedder embedding.Embedder
		vocab    *embedding.Vocabulary
	)
	if ix.strategy == embedding.StrategyTF {
		vocab, err = embedding.NewVocabulary(snap.Vocabulary)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", models.ErrCorruptIndex, err)
		}
		embedder = embedding.NewTFEmbedder(vocab)
	} else {
		embedder = ix.pretrained
	}
	if embedder.Dimensions() != snap.Manifest.Dimensions {
		return nil, false, fmt.Errorf("%w: persisted vectors have %d dimensions, embedder has %d",
			models.ErrDimensionMismatch, snap.Manifest.Dimensions, embedder.Dimensions())
	}

	idx, err = newIndex(ctx, snap.Manifest, snap.Passages, snap.Vectors, embedder, vocab)
	if err != nil {
		return nil, false, err
	}
	ix.logger.Info("index loaded",
		zap.String("build_id", snap.Manifest.BuildID),
		zap.Int("passages", idx.Size()))
	return idx, true, nil
}

// Close releases the pretrained embedder, if any.
func (ix *Indexer) Close() error {
	if ix.pretrained == nil {
		return nil
	}
	return ix.pretrained.Close()
}
