// Package mcpserver exposes the search engine as Model Context Protocol tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hyperjump/jurisearch/internal/search"
)

// ServerName identifies jurisearch to MCP clients.
const ServerName = "jurisearch"

// NewServer creates an MCP server with the legal research tools registered.
func NewServer(engine *search.Engine, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	RegisterTools(server, engine)
	return server
}

// RegisterTools adds legal_search, legal_categories, and legal_statistics to server.
func RegisterTools(server *mcp.Server, engine *search.Engine) {
	searchTool := NewSearchHandler(engine)
	mcp.AddTool(server, searchTool.GetToolDefinition(), searchTool.Handle)

	catalog := NewCatalogHandler(engine)
	mcp.AddTool(server, catalog.CategoriesTool(), catalog.HandleCategories)
	mcp.AddTool(server, catalog.StatisticsTool(), catalog.HandleStatistics)
}

// RunStdio serves server on stdin/stdout until ctx is cancelled or the client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
