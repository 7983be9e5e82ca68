// Package corpus loads legal source files from category directories into passages.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/jurisearch/internal/extract"
	"github.com/hyperjump/jurisearch/internal/models"
	"go.uber.org/zap"
)

// Loader reads category directories under a corpus root and chunks every file into passages.
type Loader struct {
	extractor  *extract.Extractor
	chunker    *Chunker
	categories []models.Category
	logger     *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for skipped files and load summaries.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) LoaderOption {
	return func(ld *Loader) { ld.extractor = e }
}

// WithCategories restricts or extends the category directories walked.
func WithCategories(cats ...models.Category) LoaderOption {
	return func(ld *Loader) { ld.categories = cats }
}

// NewLoader creates a loader that chunks passages to at most chunkSize characters.
func NewLoader(chunkSize int, opts ...LoaderOption) *Loader {
	ld := &Loader{
		extractor:  extract.NewExtractor(),
		chunker:    NewChunker(chunkSize),
		categories: models.Categories(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadStats summarizes one Compile run.
type LoadStats struct {
	Files    int
	Skipped  int
	Passages int
}

// Compile walks each category directory under root and returns passages in category then
// file order. A file that cannot be read or decoded is logged and skipped. Returns
// models.ErrCorpusNotFound when root does not exist or is not a directory.
func (l *Loader) Compile(ctx context.Context, root string) ([]models.CorpusPassage, error) {
	passages, _, err := l.CompileWithStats(ctx, root)
	return passages, err
}

// CompileWithStats is Compile that also reports file counts.
func (l *Loader) CompileWithStats(ctx context.Context, root string) ([]models.CorpusPassage, LoadStats, error) {
	var stats LoadStats
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, stats, fmt.Errorf("%w: %s", models.ErrCorpusNotFound, root)
	}

	var passages []models.CorpusPassage
	for _, cat := range l.categories {
		dir := filepath.Join(root, string(cat))
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			l.logger.Debug("category directory missing", zap.String("category", string(cat)), zap.String("path", dir))
			continue
		}
		files, err := l.listFiles(dir)
		if err != nil {
			return nil, stats, fmt.Errorf("list %s: %w", dir, err)
		}
		stems := make(map[string]struct{}, len(files))
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
			stats.Files++
			filePassages, err := l.loadFile(cat, path, uniqueStem(stems, path))
			if err != nil {
				stats.Skipped++
				l.logger.Warn("skipping corpus file", zap.String("path", path), zap.Error(err))
				continue
			}
			passages = append(passages, filePassages...)
		}
	}
	stats.Passages = len(passages)
	l.logger.Info("corpus compiled",
		zap.String("root", root),
		zap.Int("files", stats.Files),
		zap.Int("skipped", stats.Skipped),
		zap.Int("passages", stats.Passages),
	)
	return passages, stats, nil
}

// listFiles returns supported files under dir in lexical order, skipping hidden entries.
func (l *Loader) listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			l.logger.Warn("walk error", zap.String("path", path), zap.Error(err))
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if l.extractor.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (l *Loader) loadFile(cat models.Category, path, stem string) ([]models.CorpusPassage, error) {
	text, err := l.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	chunks := l.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, errors.New("no text content")
	}
	name := filepath.Base(path)
	legalArea := ClassifyLegalArea(name)
	docType := ClassifyDocumentType(cat, name)
	out := make([]models.CorpusPassage, len(chunks))
	for i, chunk := range chunks {
		out[i] = models.CorpusPassage{
			ID:             PassageID(cat, stem, i),
			Content:        chunk,
			SourceDocument: name,
			Category:       cat,
			CategoryName:   cat.DisplayName(),
			LegalArea:      legalArea,
			DocumentType:   docType,
		}
	}
	return out, nil
}

// PassageID returns the stable id of chunk index of a file stem in a category.
func PassageID(cat models.Category, stem string, index int) string {
	return fmt.Sprintf("%s_%s_%d", cat, stem, index)
}

// uniqueStem returns the file stem of path, folding in the extension and then a counter when
// another file in the same category already claimed the stem.
func uniqueStem(seen map[string]struct{}, path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	candidate := stem
	if _, taken := seen[candidate]; taken && ext != "" {
		candidate = stem + "_" + strings.TrimPrefix(strings.ToLower(ext), ".")
	}
	for n := 2; ; n++ {
		if _, taken := seen[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s_%d", stem, n)
	}
	seen[candidate] = struct{}{}
	return candidate
}
