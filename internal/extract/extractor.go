// Package extract turns legal source files into plain text with paragraph breaks preserved.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"
)

// ErrInvalidEncoding is returned for plain-text files that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 content")

// ErrUnsupportedFormat is returned for extensions the extractor does not handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

// DefaultExtensions lists the file extensions loaded from a corpus directory.
var DefaultExtensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".rtf", ".odt"}

// Extractor extracts plain text from corpus files.
type Extractor struct {
	extensions map[string]struct{}
}

// NewExtractor returns an Extractor accepting exts (with leading dot).
// An empty list means DefaultExtensions.
func NewExtractor(exts ...string) *Extractor {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	e := &Extractor{extensions: make(map[string]struct{}, len(exts))}
	for _, ext := range exts {
		e.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return e
}

// Supports reports whether path has an extension this extractor loads.
func (e *Extractor) Supports(path string) bool {
	_, ok := e.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract reads the file at path and returns its text content.
// Paragraphs are separated by blank lines so callers can chunk on them.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !e.Supports(path) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	switch ext {
	case ".rtf", ".odt":
		text, err := cat.File(path)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		return normalizeNewlines(text), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".txt", ".md", ".rst", "":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// normalizeNewlines converts CRLF and CR line endings to LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
