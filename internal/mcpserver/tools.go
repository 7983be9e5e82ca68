package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/search"
	"github.com/hyperjump/jurisearch/pkg/utils"
)

const resultPreviewLength = 600

// SearchArgument defines legal_search parameters.
type SearchArgument struct {
	Query               string   `json:"query" jsonschema:"Legal research question or keywords"`
	TopK                int      `json:"topK,omitempty" jsonschema:"Maximum number of passages to return (default 10)"`
	Category            string   `json:"category,omitempty" jsonschema:"Restrict to one of contracts, clauses, precedents, statutes"`
	LegalArea           string   `json:"legalArea,omitempty" jsonschema:"Legal area such as Employment Law or Intellectual Property"`
	DocumentType        string   `json:"documentType,omitempty" jsonschema:"Document type such as statute, case law, contract, clause"`
	ContentLengthFilter string   `json:"contentLengthFilter,omitempty" jsonschema:"short, medium, or long"`
	MinRelevanceScore   *float64 `json:"minRelevanceScore,omitempty" jsonschema:"Minimum relevance score"`
	SortBy              string   `json:"sortBy,omitempty" jsonschema:"relevance, document_type, legal_area, or authority"`
	IncludeCitations    bool     `json:"includeCitations,omitempty" jsonschema:"Append a length detail to each citation"`
}

func (a SearchArgument) query() models.Query {
	return models.Query{
		Text: a.Query,
		TopK: a.TopK,
		Filters: models.Filters{
			Category:          a.Category,
			LegalArea:         a.LegalArea,
			DocumentType:      a.DocumentType,
			ContentLength:     a.ContentLengthFilter,
			MinRelevanceScore: a.MinRelevanceScore,
			SortBy:            a.SortBy,
			IncludeCitations:  a.IncludeCitations,
		},
	}
}

// SearchHandler handles the legal_search tool.
type SearchHandler struct {
	engine *search.Engine
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Handle runs the search and returns the ranked passages as text.
func (h *SearchHandler) Handle(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	results, err := h.engine.Search(ctx, args.query())
	if err != nil {
		if errors.Is(err, models.ErrInvalidQuery) {
			return errorResult("Query cannot be empty"), nil, nil
		}
		return errorResult(fmt.Sprintf("Search failed: %s", err)), nil, nil
	}
	return textResult(formatResults(results, args.Query, h.engine.Suggest(args.Query))), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "legal_search",
		Description: "Search the legal corpus (contracts, clauses, precedents, statutes) and return ranked passages with citations",
	}
}

func formatResults(results []models.SearchResult, query string, suggestions []string) string {
	if len(results) == 0 {
		msg := fmt.Sprintf("No results found for query: %s", query)
		if len(suggestions) > 0 {
			msg += "\nDid you mean: " + strings.Join(suggestions, ", ")
		}
		return msg
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d passages for '%s':\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, r.Citation)
		fmt.Fprintf(&sb, "**Type**: %s  **Score**: %.4f\n\n", r.DocumentType, r.RelevanceScore)
		sb.WriteString(utils.Truncate(r.Content, resultPreviewLength))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// CatalogHandler handles the legal_categories and legal_statistics tools.
type CatalogHandler struct {
	engine *search.Engine
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(engine *search.Engine) *CatalogHandler {
	return &CatalogHandler{engine: engine}
}

// NoArgument is the input of tools without parameters.
type NoArgument struct{}

// HandleCategories lists the corpus categories.
func (h *CatalogHandler) HandleCategories(_ context.Context, _ *mcp.CallToolRequest, _ NoArgument) (*mcp.CallToolResult, any, error) {
	return textResult("Categories: " + strings.Join(h.engine.Categories(), ", ")), nil, nil
}

// HandleStatistics reports passage counts per category.
func (h *CatalogHandler) HandleStatistics(_ context.Context, _ *mcp.CallToolRequest, _ NoArgument) (*mcp.CallToolResult, any, error) {
	stats := h.engine.Statistics()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total passages: %d\n", stats.TotalDocuments)
	for _, c := range h.engine.Categories() {
		fmt.Fprintf(&sb, "- %s: %d\n", c, stats.Categories[c])
	}
	return textResult(sb.String()), nil, nil
}

// CategoriesTool returns the legal_categories definition.
func (h *CatalogHandler) CategoriesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "legal_categories",
		Description: "List the categories of the legal corpus",
	}
}

// StatisticsTool returns the legal_statistics definition.
func (h *CatalogHandler) StatisticsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "legal_statistics",
		Description: "Report how many passages are indexed in each corpus category",
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResult {
	r := textResult(text)
	r.IsError = true
	return r
}
