// Package watcher watches a corpus directory with fsnotify and triggers a debounced reindex.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/fingerprint"
	"github.com/hyperjump/jurisearch/internal/models"
)

const defaultDebounce = 2 * time.Second

// ReindexFunc rebuilds the index after the corpus changed.
type ReindexFunc func(ctx context.Context) error

// Watcher watches a corpus root and its category directories. Bursts of file events are
// collapsed into one reindex once the corpus has been quiet for the debounce interval.
// A burst that leaves the corpus fingerprint unchanged does not reindex.
type Watcher struct {
	root       string
	extensions []string
	debounce   time.Duration
	onChange   ReindexFunc
	logger     *zap.Logger

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	timer     *time.Timer
	pending   map[string]struct{}
	lastPrint string
	ctx       context.Context
	started   bool
	done      chan struct{}
	stopOnce  sync.Once

	// runMu serializes reindex callbacks.
	runMu sync.Mutex
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for watch events and reindex outcomes.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets the quiet period before a reindex.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for the corpus at root. extensions filters which files
// count as corpus changes (empty means all).
func NewWatcher(root string, extensions []string, onChange ReindexFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:       filepath.Clean(root),
		extensions: extensions,
		debounce:   defaultDebounce,
		onChange:   onChange,
		logger:     zap.NewNop(),
		pending:    make(map[string]struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called. The corpus root
// must exist; a missing root returns models.ErrCorpusNotFound.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if info, err := os.Stat(w.root); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", models.ErrCorpusNotFound, w.root)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fw
	if err := w.addTreeLocked(w.root); err != nil {
		_ = fw.Close()
		w.watcher = nil
		return err
	}
	if fp, err := fingerprint.Corpus(w.root, w.extensions); err == nil {
		w.lastPrint = fp
	}
	w.ctx = ctx
	w.started = true
	w.logger.Info("watching corpus", zap.String("root", w.root), zap.Duration("debounce", w.debounce))
	go w.run(ctx, fw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !inDir(w.root, path) || hidden(w.root, path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.mu.Lock()
			if w.watcher != nil {
				if err := w.addTreeLocked(path); err != nil {
					w.logger.Warn("failed to watch new directory", zap.String("path", path), zap.Error(err))
				}
			}
			w.mu.Unlock()
			w.schedule(path)
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	// A removed directory has no extension; let the fingerprint decide.
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || fingerprint.MatchExtension(path, w.extensions) {
		w.schedule(path)
	}
}

// schedule records a changed path and restarts the quiet-period timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	changed := len(w.pending)
	w.pending = make(map[string]struct{})
	w.timer = nil
	ctx := w.ctx
	last := w.lastPrint
	w.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	fp, err := fingerprint.Corpus(w.root, w.extensions)
	if err != nil {
		w.logger.Warn("corpus fingerprint failed", zap.String("root", w.root), zap.Error(err))
	} else if fp == last {
		w.logger.Debug("corpus unchanged, skipping reindex", zap.Int("events", changed))
		return
	}

	start := time.Now()
	if err := w.onChange(ctx); err != nil {
		w.logger.Error("reindex after corpus change failed", zap.Error(err))
		return
	}
	w.mu.Lock()
	w.lastPrint = fp
	w.mu.Unlock()
	w.logger.Info("reindexed after corpus change",
		zap.Int("events", changed),
		zap.Duration("elapsed", time.Since(start)))
}

// addTreeLocked watches dir and every non-hidden directory below it.
func (w *Watcher) addTreeLocked(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching directory", zap.String("path", path))
		return nil
	})
}

// Directories returns the watched corpus root.
func (w *Watcher) Directories() []string {
	return []string{w.root}
}

// Stop stops the watcher and cancels any pending reindex.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.started = false
		if w.watcher != nil {
			_ = w.watcher.Close()
			w.watcher = nil
		}
	})
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hidden reports whether any element of path below root starts with a dot, or the file
// name looks like an editor backup.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return strings.HasSuffix(path, "~")
}
