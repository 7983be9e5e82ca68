package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/cli"
	"github.com/hyperjump/jurisearch/internal/mcpserver"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/search"
	"github.com/hyperjump/jurisearch/internal/server"
	"github.com/hyperjump/jurisearch/internal/watcher"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Flags(), true)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			if cmd.Flags().Changed("watch") {
				rt.cfg.Watch.Enabled, _ = cmd.Flags().GetBool("watch")
			}
			return runServe(cmd.Context(), rt)
		},
	}
	cmd.Flags().Bool("watch", false, "reindex automatically when the corpus changes (overrides watch.enabled)")
	return cmd
}

func runServe(ctx context.Context, rt *app) error {
	c, err := openEngine(ctx, rt)
	if err != nil {
		return err
	}
	defer c.Close()

	var watchSvc server.WatchService
	if rt.cfg.Watch.Enabled {
		w := newCorpusWatcher(rt, c.Engine)
		if err := w.Start(ctx); err != nil {
			rt.logger.Warn("corpus watcher not started", zap.Error(err))
		} else {
			defer w.Stop()
			watchSvc = w
		}
	}

	srv := server.NewServer(c.Engine, &rt.cfg.Server, rt.logger, watchSvc)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func newCorpusWatcher(rt *app, engine *search.Engine) *watcher.Watcher {
	return watcher.NewWatcher(
		rt.cfg.Corpus.Root,
		rt.cfg.Corpus.Extensions,
		func(ctx context.Context) error {
			_, err := engine.Reindex(ctx, "")
			return err
		},
		watcher.WithDebounce(rt.cfg.Watch.Debounce),
		watcher.WithLogger(rt.logger),
	)
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [flags] <query>",
		Short: "Rank corpus passages for a research query",
		Long: `Rank corpus passages for a research query.

The query is all remaining arguments joined by spaces, so multi-word queries work
with or without quotes. Unknown filter values are ignored.`,
		Example: `  jurisearch search employment termination notice
  jurisearch search --category clauses --citations "governing law"
  jurisearch search --legal-area employment --sort-by authority --output json notice period
  jurisearch search --server http://localhost:8080 indemnity`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := searchQueryFromFlags(cmd.Flags(), args)
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd.Flags())
			if err != nil {
				return err
			}
			if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
				out, err := searchViaHTTP(cmd.Context(), serverURL, query)
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}
				return cli.WriteSearchResults(cmd.OutOrStdout(), *out, format)
			}

			rt, err := setup(cmd.Flags(), false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			c, err := openEngine(cmd.Context(), rt)
			if err != nil {
				return err
			}
			defer c.Close()

			results, err := c.Engine.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			out := cli.SearchOutput{Query: query.Text, Results: results}
			if len(results) == 0 {
				out.Suggestions = c.Engine.Suggest(query.Text)
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), out, format)
		},
	}
	flags := cmd.Flags()
	flags.IntP("top-k", "k", 0, "number of results (default from config)")
	flags.String("category", "", "restrict to one category (contracts, clauses, precedents, statutes)")
	flags.String("legal-area", "", "legal area filter, fuzzy matched (e.g. employment, liability)")
	flags.String("document-type", "", "document type filter, fuzzy matched (e.g. statute, case law)")
	flags.String("length", "", "content length filter: short, medium or long")
	flags.Float64("min-score", 0, "minimum relevance score")
	flags.String("sort-by", "", "relevance, document_type, legal_area or authority")
	flags.Bool("citations", false, "attach detailed citations")
	flags.String("server", "", "query a running jurisearch server instead of the local index")
	addOutputFlag(flags)
	return cmd
}

// searchQueryFromFlags builds a query from the search command flags. minScore is only
// applied when the flag was given so that zero remains distinguishable from unset.
func searchQueryFromFlags(flags *pflag.FlagSet, args []string) (models.Query, error) {
	q := models.Query{Text: buildSearchQuery(args)}
	if q.Text == "" {
		return q, fmt.Errorf("%w: query cannot be empty", models.ErrInvalidQuery)
	}
	q.TopK, _ = flags.GetInt("top-k")
	q.Filters.Category, _ = flags.GetString("category")
	q.Filters.LegalArea, _ = flags.GetString("legal-area")
	q.Filters.DocumentType, _ = flags.GetString("document-type")
	q.Filters.ContentLength, _ = flags.GetString("length")
	q.Filters.SortBy, _ = flags.GetString("sort-by")
	q.Filters.IncludeCitations, _ = flags.GetBool("citations")
	if flags.Changed("min-score") {
		v, _ := flags.GetFloat64("min-score")
		q.Filters.MinRelevanceScore = &v
	}
	return q, nil
}

func searchViaHTTP(ctx context.Context, serverURL string, query models.Query) (*cli.SearchOutput, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out cli.SearchOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [flags] <terms>",
		Short: "Keyword lookup over passage text and file names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd.Flags())
			if err != nil {
				return err
			}
			return withEngine(cmd, func(engine *search.Engine) error {
				text := buildSearchQuery(args)
				category, _ := cmd.Flags().GetString("category")
				limit, _ := cmd.Flags().GetInt("limit")
				fuzzy, _ := cmd.Flags().GetBool("fuzzy")
				hits, err := engine.Lookup(cmd.Context(), text, search.LookupOptions{
					Category: category,
					Limit:    limit,
					Fuzzy:    fuzzy,
				})
				if err != nil {
					return fmt.Errorf("lookup failed: %w", err)
				}
				return cli.WriteLookupHits(cmd.OutOrStdout(), text, hits, format)
			})
		},
	}
	cmd.Flags().String("category", "", "restrict to one category")
	cmd.Flags().Int("limit", models.DefaultTopK, "maximum number of hits")
	cmd.Flags().Bool("fuzzy", false, "tolerate one misspelled letter per term")
	addOutputFlag(cmd.Flags())
	return cmd
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex [corpus-root]",
		Short: "Rebuild and persist the index from the corpus",
		Long:  "Rebuild and persist the index from the corpus. The configured corpus root is used when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Flags(), false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			c, err := initializeComponents(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			start := time.Now()
			n, err := c.Engine.Reindex(cmd.Context(), root)
			if err != nil {
				return fmt.Errorf("reindex failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d passage(s) in %s (build %s)\n",
				n, time.Since(start).Round(time.Millisecond), c.Engine.Index().Manifest().BuildID)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show passage counts per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd.Flags())
			if err != nil {
				return err
			}
			return withEngine(cmd, func(engine *search.Engine) error {
				return cli.WriteStatistics(cmd.OutOrStdout(), engine.Statistics(), format)
			})
		},
	}
	addOutputFlag(cmd.Flags())
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List corpus categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd.Flags())
			if err != nil {
				return err
			}
			rt, err := setup(cmd.Flags(), false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			// The category set is closed, so no index is needed.
			c, err := initializeComponents(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer c.Close()
			return cli.WriteCategories(cmd.OutOrStdout(), c.Engine.Categories(), format)
		},
	}
	addOutputFlag(cmd.Flags())
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index build metadata and artifact size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd.Flags())
			if err != nil {
				return err
			}
			rt, err := setup(cmd.Flags(), false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			// Status reports what is persisted; it never builds an index.
			autoIndex := false
			rt.cfg.Corpus.AutoIndex = &autoIndex
			c, err := openEngine(cmd.Context(), rt)
			if err != nil {
				return err
			}
			defer c.Close()
			return cli.WriteStatus(cmd.OutOrStdout(), c.Engine.Status(), format)
		},
	}
	addOutputFlag(cmd.Flags())
	return cmd
}

func newMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Flags(), true)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			c, err := openEngine(cmd.Context(), rt)
			if err != nil {
				return err
			}
			defer c.Close()
			rt.logger.Info("serving MCP on stdio", zap.Int("passages", c.Engine.Index().Size()))
			return mcpserver.RunStdio(cmd.Context(), mcpserver.NewServer(c.Engine, version))
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the corpus and reindex when it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Flags(), true)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			c, err := openEngine(cmd.Context(), rt)
			if err != nil {
				return err
			}
			defer c.Close()
			w := newCorpusWatcher(rt, c.Engine)
			if err := w.Start(cmd.Context()); err != nil {
				return err
			}
			defer w.Stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", rt.cfg.Corpus.Root)
			<-cmd.Context().Done()
			return nil
		},
	}
}

// withEngine opens the local index for a one-shot command.
func withEngine(cmd *cobra.Command, fn func(*search.Engine) error) error {
	rt, err := setup(cmd.Flags(), false)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()
	c, err := openEngine(cmd.Context(), rt)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c.Engine)
}

func addOutputFlag(flags *pflag.FlagSet) {
	flags.StringP("output", "o", string(cli.OutputText), "output format: text, compact or json")
}

func outputFormat(flags *pflag.FlagSet) (cli.OutputFormat, error) {
	v, _ := flags.GetString("output")
	return cli.ParseOutputFormat(v)
}
