// Package main is the jurisearch CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hyperjump/jurisearch/internal/config"
	"github.com/hyperjump/jurisearch/internal/corpus"
	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/extract"
	"github.com/hyperjump/jurisearch/internal/indexer"
	"github.com/hyperjump/jurisearch/internal/ranking"
	"github.com/hyperjump/jurisearch/internal/search"
	"github.com/hyperjump/jurisearch/internal/storage"
	"github.com/hyperjump/jurisearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/jurisearch/config.yaml"

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Execute(ctx, version, args[1:], os.Stdout); err != nil {
		exit(1)
	}
}

// Execute builds the command tree and runs it with args, writing command output to out.
func Execute(ctx context.Context, version string, args []string, out io.Writer) error {
	root := newRootCmd(version)
	root.SetOut(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "jurisearch",
		Short:         "Semantic search over a local legal corpus",
		Long:          "jurisearch indexes contracts, clauses, precedents and statutes and ranks passages for legal research queries.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(cmd.Flags())
		},
	}
	root.SetVersionTemplate("jurisearch version {{.Version}}\n")
	registerGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(),
		newSearchCmd(),
		newLookupCmd(),
		newReindexCmd(),
		newStatsCmd(),
		newCategoriesCmd(),
		newStatusCmd(),
		newMCPCmd(version),
		newWatchCmd(),
	)
	return root
}

func registerGlobalFlags(flags *pflag.FlagSet) {
	flags.String("config", defaultConfigPath, "config file path")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("env-file", "", "load environment variables from this file (default: .env when present)")
}

// loadEnvFile loads the named env file, or .env from the working directory when it exists.
func loadEnvFile(flags *pflag.FlagSet) error {
	path, _ := flags.GetString("env-file")
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence, and a missing default file yields the built-in defaults.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyEnv(cfg)
			config.ApplyDefaults(cfg)
			if err := cfg.Validate(); err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// app is the loaded config and logger shared by every command.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
}

// setup loads config and builds a logger. Long-running commands log at info level;
// one-shot commands only log warnings unless --debug is set.
func setup(flags *pflag.FlagSet, longRunning bool) (*app, error) {
	path, _ := flags.GetString("config")
	debug, _ := flags.GetBool("debug")
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug = debug || cfg.Debug
	newLogger := utils.NewCLILogger
	if longRunning {
		newLogger = utils.NewLogger
	}
	logger, err := newLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))
	return &app{cfg: cfg, configPath: resolved, logger: logger}, nil
}

// Components holds initialized services.
type Components struct {
	Store   storage.IndexStore
	Indexer *indexer.Indexer
	Engine  *search.Engine
}

// Close releases the engine, its embedder and the artifact store.
func (c *Components) Close() {
	if c.Engine != nil {
		_ = c.Engine.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	strategy := embedding.Strategy(cfg.Embedding.Strategy)
	idxOpts := []indexer.IndexerOption{
		indexer.WithLogger(logger),
		indexer.WithBatchSize(cfg.Embedding.BatchSize),
		indexer.WithMinTokenCount(cfg.Embedding.MinTokenCount),
	}
	var pretrained embedding.Embedder
	if strategy.Pretrained() {
		pretrained, err = embedding.NewPretrained(pretrainedConfig(cfg))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		idxOpts = append(idxOpts, indexer.WithPretrained(pretrained))
	}
	ix, err := indexer.NewIndexer(strategy, store, idxOpts...)
	if err != nil {
		if pretrained != nil {
			_ = pretrained.Close()
		}
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize indexer: %w", err)
	}

	loader := corpus.NewLoader(cfg.Corpus.ChunkSize,
		corpus.WithExtractor(extract.NewExtractor(cfg.Corpus.Extensions...)),
		corpus.WithLogger(logger),
	)
	ranker := ranking.NewRanker(&cfg.Ranking, ranking.WithLogger(logger))
	engine := search.NewEngine(ix, loader, ranker, &cfg.Search,
		search.WithLogger(logger),
		search.WithCorpusRoot(cfg.Corpus.Root),
		search.WithAutoIndex(cfg.Corpus.AutoIndexOrDefault()),
	)
	logger.Debug("components initialized",
		zap.String("strategy", string(strategy)),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("corpus_root", cfg.Corpus.Root))

	return &Components{Store: store, Indexer: ix, Engine: engine}, nil
}

func pretrainedConfig(cfg *config.Config) embedding.PretrainedConfig {
	e := cfg.Embedding
	return embedding.PretrainedConfig{
		Strategy: embedding.Strategy(e.Strategy),
		HTTP: embedding.HTTPConfig{
			BaseURL:    e.HTTP.BaseURL,
			APIKey:     e.HTTP.APIKey,
			Model:      e.HTTP.Model,
			Dimensions: e.HTTP.Dimensions,
			Timeout:    e.HTTP.Timeout,
		},
		ONNX: embedding.ONNXConfig{
			ModelPath:         e.ONNX.ModelPath,
			SharedLibraryPath: e.ONNX.SharedLibraryPath,
			Dimensions:        e.ONNX.Dimensions,
			MaxTokens:         e.ONNX.MaxTokens,
			OutputName:        e.ONNX.OutputName,
		},
		CacheSize: e.CacheSize,
	}
}

// openEngine initializes components and loads (or auto-builds) the index.
func openEngine(ctx context.Context, rt *app) (*Components, error) {
	c, err := initializeComponents(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}
	if err := c.Engine.Open(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
