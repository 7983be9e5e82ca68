// Package search answers legal research queries against the current corpus index.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/config"
	"github.com/hyperjump/jurisearch/internal/corpus"
	"github.com/hyperjump/jurisearch/internal/indexer"
	"github.com/hyperjump/jurisearch/internal/keyword"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/ranking"
	"github.com/hyperjump/jurisearch/internal/storage"
)

// Engine runs semantic search with legal re-ranking over an immutable index snapshot.
// Queries read the current snapshot without locking; Reindex builds a replacement and
// swaps it in once it is complete and persisted.
type Engine struct {
	current atomic.Pointer[indexer.Index]
	// reindexMu serializes Reindex calls.
	reindexMu sync.Mutex

	indexer *indexer.Indexer
	loader  *corpus.Loader
	ranker  *ranking.Ranker
	config  *config.SearchConfig

	corpusRoot string
	autoIndex  bool
	logger     *zap.Logger
}

// ErrEngineClosed is returned by queries made after Close.
var ErrEngineClosed = errors.New("search engine closed")

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCorpusRoot sets the directory Open and Reindex("") index from.
func WithCorpusRoot(root string) Option {
	return func(e *Engine) { e.corpusRoot = root }
}

// WithAutoIndex makes Open build the index when nothing usable is persisted.
func WithAutoIndex(enabled bool) Option {
	return func(e *Engine) { e.autoIndex = enabled }
}

// NewEngine creates a search engine with the given dependencies. The engine starts with
// an empty index; call Open to load persisted artifacts.
func NewEngine(ix *indexer.Indexer, loader *corpus.Loader, ranker *ranking.Ranker, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	if ranker == nil {
		ranker = ranking.NewRanker(nil)
	}
	e := &Engine{
		indexer: ix,
		loader:  loader,
		ranker:  ranker,
		config:  cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.current.Store(indexer.NewEmptyIndex(ix.Strategy()))
	return e
}

// Open loads the persisted index. When none is usable and auto-indexing is enabled, the
// corpus root is indexed. With auto-indexing, corrupt artifacts are rebuilt rather than
// failing. A missing corpus root at this point is logged, and the engine keeps serving
// an empty index.
func (e *Engine) Open(ctx context.Context) error {
	idx, loaded, err := e.indexer.Load(ctx)
	if err != nil {
		if !e.autoIndex || !errors.Is(err, models.ErrCorruptIndex) {
			return err
		}
		e.logger.Warn("persisted index is corrupt, rebuilding", zap.Error(err))
		idx, loaded = indexer.NewEmptyIndex(e.indexer.Strategy()), false
	}
	e.swap(idx)
	if loaded || !e.autoIndex {
		return nil
	}
	if _, err := e.Reindex(ctx, ""); err != nil {
		if errors.Is(err, models.ErrCorpusNotFound) {
			e.logger.Warn("corpus root not found, serving an empty index", zap.String("root", e.corpusRoot))
			return nil
		}
		return err
	}
	return nil
}

// Index returns the current snapshot.
func (e *Engine) Index() *indexer.Index { return e.current.Load() }

// Search returns up to query.TopK ranked passages. An empty or not yet built index yields
// an empty result list. Blank queries return models.ErrInvalidQuery.
func (e *Engine) Search(ctx context.Context, query models.Query) ([]models.SearchResult, error) {
	start := time.Now()
	if err := ProcessQuery(&query, e.config); err != nil {
		return nil, err
	}

	idx, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.release(idx)
	candidates, err := idx.Similar(ctx, query.Text, candidatePoolSize(query.TopK, e.config))
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	results := e.ranker.Rank(candidates, query)

	e.logger.Debug("search",
		zap.String("query", query.Text),
		zap.Int("top_k", query.TopK),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// LookupOptions narrows a keyword lookup.
type LookupOptions struct {
	// Category restricts hits to one category. Unknown names are logged and ignored.
	Category string
	// Limit caps the hits; zero means the configured default top-k.
	Limit int
	// Fuzzy tolerates one edit per query term.
	Fuzzy bool
}

const lookupFuzziness = 1

// Lookup runs a keyword query over passage content and source file names. Scores are
// normalized so the best hit is 1.
func (e *Engine) Lookup(ctx context.Context, text string, opts LookupOptions) ([]models.KeywordHit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: lookup text cannot be empty", models.ErrInvalidQuery)
	}
	kopts := &keyword.SearchOptions{Limit: opts.Limit}
	if kopts.Limit <= 0 {
		kopts.Limit = e.config.DefaultTopK
	}
	if e.config.MaxTopK > 0 && kopts.Limit > e.config.MaxTopK {
		kopts.Limit = e.config.MaxTopK
	}
	if opts.Fuzzy {
		kopts.Fuzziness = lookupFuzziness
	}
	if opts.Category != "" {
		if c, ok := models.ParseCategory(opts.Category); ok {
			kopts.Category = c
		} else {
			e.logger.Warn("ignoring unknown lookup category", zap.String("category", opts.Category))
		}
	}

	idx, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.release(idx)
	hits, err := idx.Lookup(ctx, text, kopts)
	if err != nil {
		return nil, fmt.Errorf("keyword lookup failed: %w", err)
	}
	return NormalizeKeywordScores(hits), nil
}

// Suggest returns alternative spellings for a query, built from corpus terms. A closed
// engine has no suggestions.
func (e *Engine) Suggest(text string) []string {
	n := e.config.SuggestionLimit
	if n <= 0 {
		n = 3
	}
	idx, err := e.acquire()
	if err != nil {
		return nil
	}
	defer e.release(idx)
	return idx.Suggest(strings.TrimSpace(text), n)
}

// Statistics returns passage counts for the current index.
func (e *Engine) Statistics() models.Statistics {
	return e.current.Load().Statistics()
}

// Categories returns the fixed category names in canonical order.
func (e *Engine) Categories() []string {
	cats := models.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// Reindex compiles the corpus at root (the configured root when empty), builds and
// persists a new index, and swaps it in. It returns the number of passages indexed.
// A missing root returns models.ErrCorpusNotFound and leaves the current index in place.
func (e *Engine) Reindex(ctx context.Context, root string) (int, error) {
	if root == "" {
		root = e.corpusRoot
	}
	e.reindexMu.Lock()
	defer e.reindexMu.Unlock()

	start := time.Now()
	passages, err := e.loader.Compile(ctx, root)
	if err != nil {
		return 0, err
	}
	idx, err := e.indexer.Build(ctx, passages, root)
	if err != nil {
		return 0, fmt.Errorf("failed to build index: %w", err)
	}
	if err := e.indexer.Persist(ctx, idx); err != nil {
		_ = idx.Close()
		return 0, err
	}
	e.swap(idx)

	e.logger.Info("reindex complete",
		zap.String("root", root),
		zap.String("build_id", idx.Manifest().BuildID),
		zap.Int("passages", idx.Size()),
		zap.Duration("elapsed", time.Since(start)))
	return idx.Size(), nil
}

// swap publishes idx and retires the previous snapshot. Readers still holding the old
// snapshot finish against it; the last of them closes it.
func (e *Engine) swap(idx *indexer.Index) {
	if old := e.current.Swap(idx); old != nil && old != idx {
		if err := old.Retire(); err != nil {
			e.logger.Warn("failed to close previous index", zap.Error(err))
		}
	}
}

// acquire returns the current snapshot registered for reading. A snapshot retired and
// closed between the load and the registration is skipped for its replacement. swap
// publishes before it retires, so a retired snapshot that is still current means the
// engine was closed.
func (e *Engine) acquire() (*indexer.Index, error) {
	for {
		idx := e.current.Load()
		if idx.Acquire() {
			return idx, nil
		}
		if e.current.Load() == idx {
			return nil, ErrEngineClosed
		}
	}
}

func (e *Engine) release(idx *indexer.Index) {
	if err := idx.Release(); err != nil {
		e.logger.Warn("failed to close previous index", zap.Error(err))
	}
}

// Status describes the current index build.
type Status struct {
	Indexed        bool      `json:"indexed"`
	BuildID        string    `json:"buildId,omitempty"`
	Strategy       string    `json:"strategy"`
	Dimensions     int       `json:"dimensions"`
	Passages       int       `json:"passages"`
	BuiltAt        time.Time `json:"builtAt,omitempty"`
	CorpusRoot     string    `json:"corpusRoot,omitempty"`
	ArtifactsBytes int64     `json:"artifactsBytes"`
}

// Status reports build metadata and the on-disk size of the persisted artifacts.
func (e *Engine) Status() Status {
	idx := e.current.Load()
	m := idx.Manifest()
	st := Status{
		Indexed:    m.BuildID != "",
		BuildID:    m.BuildID,
		Strategy:   m.Strategy,
		Dimensions: m.Dimensions,
		Passages:   idx.Size(),
		BuiltAt:    m.BuiltAt,
		CorpusRoot: m.CorpusRoot,
	}
	if store := e.indexer.Store(); store != nil {
		size, err := storage.DiskUsageBytes(store.Paths()...)
		if err != nil {
			e.logger.Debug("artifact size unavailable", zap.Error(err))
		}
		st.ArtifactsBytes = size
	}
	return st
}

// Close retires the current index and releases the indexer's embedder. Later queries fail
// with ErrEngineClosed.
func (e *Engine) Close() error {
	var errs []error
	if idx := e.current.Load(); idx != nil {
		errs = append(errs, idx.Retire())
	}
	errs = append(errs, e.indexer.Close())
	return errors.Join(errs...)
}
