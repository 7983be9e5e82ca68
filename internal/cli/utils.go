// Package cli formats search output for the jurisearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/search"
	"github.com/hyperjump/jurisearch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	contentPreviewLength = 300
	snippetLength        = 160
	compactWords         = 12
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// SearchOutput is the JSON shape of a search command.
type SearchOutput struct {
	Query       string                `json:"query"`
	Results     []models.SearchResult `json:"results"`
	Total       int                   `json:"total"`
	Suggestions []string              `json:"suggestions,omitempty"`
}

// WriteSearchResults writes ranked passages to w in the given format.
func WriteSearchResults(w io.Writer, out SearchOutput, format OutputFormat) error {
	out.Total = len(out.Results)
	if out.Results == nil {
		out.Results = []models.SearchResult{}
	}
	switch format {
	case OutputJSON:
		return writeJSON(w, out)
	case OutputCompact:
		for i, r := range out.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\t%s\n", i+1, r.RelevanceScore, r.DocumentType, r.SourceDocument,
				TruncateWords(r.Content, compactWords))
		}
		return nil
	default:
		writeSearchResultsText(w, out)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, out SearchOutput) {
	if len(out.Results) == 0 {
		fmt.Fprintf(w, "\nNo results for %q\n", out.Query)
		if len(out.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(out.Suggestions, ", "))
		}
		return
	}
	fmt.Fprintf(w, "\nFound %d passages for %q\n\n", len(out.Results), out.Query)
	for i, r := range out.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | Type: %s\n", i+1, r.RelevanceScore, r.DocumentType)
		fmt.Fprintf(w, "Source: %s\n", r.SourceDocument)
		if r.Citation != "" {
			fmt.Fprintf(w, "Citation: %s\n", r.Citation)
		}
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Content, contentPreviewLength))
	}
}

// LookupOutput is the JSON shape of one keyword lookup hit.
type LookupOutput struct {
	ID             string  `json:"id"`
	SourceDocument string  `json:"sourceDocument"`
	Category       string  `json:"category"`
	DocumentType   string  `json:"documentType"`
	Score          float64 `json:"score"`
	Snippet        string  `json:"snippet"`
}

// WriteLookupHits writes keyword lookup hits, each with a snippet around the first query term.
func WriteLookupHits(w io.Writer, query string, hits []models.KeywordHit, format OutputFormat) error {
	out := make([]LookupOutput, len(hits))
	for i, h := range hits {
		out[i] = LookupOutput{
			ID:             h.Passage.ID,
			SourceDocument: h.Passage.SourceDocument,
			Category:       string(h.Passage.Category),
			DocumentType:   h.Passage.DocumentType,
			Score:          h.Score,
			Snippet:        search.Snippet(h.Passage.Content, query, snippetLength),
		}
	}
	switch format {
	case OutputJSON:
		return writeJSON(w, map[string]interface{}{"query": query, "hits": out, "total": len(out)})
	case OutputCompact:
		for _, h := range out {
			fmt.Fprintf(w, "%.4f\t%s\n", h.Score, h.ID)
		}
		return nil
	}
	if len(out) == 0 {
		fmt.Fprintf(w, "No keyword matches for %q\n", query)
		return nil
	}
	for _, h := range out {
		fmt.Fprintf(w, "[%.3f] %s (%s)\n    %s\n", h.Score, h.ID, h.DocumentType, h.Snippet)
	}
	return nil
}

// WriteStatistics writes passage counts per category in a stable order.
func WriteStatistics(w io.Writer, stats models.Statistics, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	fmt.Fprintf(w, "Total passages: %d\n", stats.TotalDocuments)
	names := make([]string, 0, len(stats.Categories))
	for name := range stats.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %d\n", name, stats.Categories[name])
	}
	return nil
}

// WriteCategories writes the category names, one per line.
func WriteCategories(w io.Writer, categories []string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string][]string{"categories": categories})
	}
	for _, c := range categories {
		fmt.Fprintln(w, c)
	}
	return nil
}

// WriteStatus writes index build metadata.
func WriteStatus(w io.Writer, st search.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	if !st.Indexed {
		fmt.Fprintln(w, "Index: not built")
		fmt.Fprintf(w, "Strategy: %s\n", st.Strategy)
		return nil
	}
	fmt.Fprintf(w, "Build:      %s\n", st.BuildID)
	fmt.Fprintf(w, "Built at:   %s\n", st.BuiltAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Strategy:   %s (%d dimensions)\n", st.Strategy, st.Dimensions)
	fmt.Fprintf(w, "Passages:   %d\n", st.Passages)
	if st.CorpusRoot != "" {
		fmt.Fprintf(w, "Corpus:     %s\n", st.CorpusRoot)
	}
	fmt.Fprintf(w, "Artifacts:  %s\n", HumanBytes(st.ArtifactsBytes))
	return nil
}

// HumanBytes renders n bytes with a binary unit suffix.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
