package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/jurisearch/internal/config"
	"github.com/hyperjump/jurisearch/internal/corpus"
	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/indexer"
	"github.com/hyperjump/jurisearch/internal/ranking"
	"github.com/hyperjump/jurisearch/internal/search"
)

func setupEngine(t *testing.T) *search.Engine {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"contracts/employment_contract.txt":  "The employer must give an employment termination notice. Termination takes effect after notice.",
		"statutes/employment_rights_act.txt": "The Employment Rights Act protects employment and sets notice rules.",
		"clauses/governing_law.txt":          "This agreement is governed by the law of England and Wales.",
		"clauses/notices.txt":                "Notices under this agreement must be delivered in writing.",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	ix, err := indexer.NewIndexer(embedding.StrategyTF, nil)
	require.NoError(t, err)
	cfg := &config.SearchConfig{DefaultTopK: 10, MaxTopK: 100, CandidateMultiplier: 5, MinCandidates: 50, SuggestionLimit: 3}
	engine := search.NewEngine(ix, corpus.NewLoader(corpus.DefaultChunkSize), ranking.NewRanker(nil), cfg)
	t.Cleanup(func() { _ = engine.Close() })
	_, err = engine.Reindex(context.Background(), root)
	require.NoError(t, err)
	return engine
}

func resultText(r *mcp.CallToolResult) string {
	var sb strings.Builder
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestSearchHandler_EmptyQuery(t *testing.T) {
	handler := NewSearchHandler(setupEngine(t))
	result, _, err := handler.Handle(context.Background(), &mcp.CallToolRequest{}, SearchArgument{Query: " "})
	require.NoError(t, err, "Handle returned error")
	assert.True(t, result.IsError, "Expected error result for empty query")
}

func TestSearchHandler_Search(t *testing.T) {
	handler := NewSearchHandler(setupEngine(t))
	result, _, err := handler.Handle(context.Background(), &mcp.CallToolRequest{}, SearchArgument{
		Query: "employment termination", TopK: 2, IncludeCitations: true,
	})
	require.NoError(t, err, "Handle returned error")
	require.False(t, result.IsError, "Expected success, got error: %s", resultText(result))
	text := resultText(result)
	assert.Contains(t, text, "Found 2 passages")
	assert.Contains(t, text, "Contracts - employment_contract.txt (Brief)", "citation missing from output")
}

func TestSearchHandler_NoResultsSuggests(t *testing.T) {
	handler := NewSearchHandler(setupEngine(t))
	result, _, err := handler.Handle(context.Background(), &mcp.CallToolRequest{}, SearchArgument{Query: "agrement"})
	require.NoError(t, err, "Handle returned error")
	require.False(t, result.IsError, "an out-of-vocabulary query is not an error")
	text := resultText(result)
	assert.Contains(t, text, "No results")
	assert.Contains(t, text, "agreement", "expected a spelling suggestion")
}

func TestCatalogHandler(t *testing.T) {
	handler := NewCatalogHandler(setupEngine(t))
	ctx := context.Background()

	result, _, err := handler.HandleCategories(ctx, &mcp.CallToolRequest{}, NoArgument{})
	require.NoError(t, err)
	assert.Equal(t, "Categories: contracts, clauses, precedents, statutes", resultText(result))

	result, _, err = handler.HandleStatistics(ctx, &mcp.CallToolRequest{}, NoArgument{})
	require.NoError(t, err)
	text := resultText(result)
	for _, want := range []string{"Total passages: 4", "- clauses: 2", "- precedents: 0"} {
		assert.Contains(t, text, want)
	}
}

func TestServer_ToolsOverSession(t *testing.T) {
	ctx := context.Background()
	server := NewServer(setupEngine(t), "test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "1.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"legal_categories", "legal_search", "legal_statistics"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "legal_search",
		Arguments: map[string]any{"query": "governed agreement", "category": "clauses"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "legal_search failed: %s", resultText(res))
	assert.Contains(t, resultText(res), "Legal Clauses - ")
}
