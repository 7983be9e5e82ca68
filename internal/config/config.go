// Package config provides configuration loading and structs for the jurisearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/ranking"
	"github.com/hyperjump/jurisearch/internal/storage"
)

// Environment variables consulted after the config file is read. They are usually
// supplied through a .env file loaded by the CLI.
const (
	EnvCorpusRoot      = "JURISEARCH_CORPUS_ROOT"
	EnvEmbeddingAPIKey = "JURISEARCH_EMBEDDING_API_KEY"
	EnvEmbeddingURL    = "JURISEARCH_EMBEDDING_URL"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool                  `yaml:"debug"`
	Server    ServerConfig          `yaml:"server"`
	Corpus    CorpusConfig          `yaml:"corpus"`
	Embedding EmbeddingConfig       `yaml:"embedding"`
	Storage   StorageConfig         `yaml:"storage"`
	Search    SearchConfig          `yaml:"search"`
	Ranking   ranking.RankingConfig `yaml:"ranking"`
	Watch     WatchConfig           `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig locates the legal corpus and controls how it is split into passages.
type CorpusConfig struct {
	Root       string   `yaml:"root"`
	ChunkSize  int      `yaml:"chunk_size"`
	Extensions []string `yaml:"extensions"`
	// AutoIndex builds the index from Root at startup when no persisted index exists.
	AutoIndex *bool `yaml:"auto_index"`
}

// AutoIndexOrDefault returns whether to index at startup; defaults to true when unset.
func (c *CorpusConfig) AutoIndexOrDefault() bool {
	if c.AutoIndex != nil {
		return *c.AutoIndex
	}
	return true
}

// EmbeddingConfig selects the vectorization strategy.
type EmbeddingConfig struct {
	// Strategy is "tf" (term frequency over the corpus vocabulary), "http" or "onnx".
	Strategy      string              `yaml:"strategy"`
	MinTokenCount int                 `yaml:"min_token_count"`
	BatchSize     int                 `yaml:"batch_size"`
	CacheSize     int                 `yaml:"cache_size"`
	HTTP          HTTPEmbeddingConfig `yaml:"http"`
	ONNX          ONNXEmbeddingConfig `yaml:"onnx"`
}

// HTTPEmbeddingConfig configures an OpenAI-compatible embeddings endpoint.
type HTTPEmbeddingConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ONNXEmbeddingConfig configures a local ONNX sentence-embedding model.
type ONNXEmbeddingConfig struct {
	ModelPath         string `yaml:"model_path"`
	SharedLibraryPath string `yaml:"shared_library_path"`
	Dimensions        int    `yaml:"dimensions"`
	MaxTokens         int    `yaml:"max_tokens"`
	OutputName        string `yaml:"output_name"`
}

// StorageConfig holds where index artifacts are persisted.
type StorageConfig struct {
	// Backend is "file" (JSON artifacts in a directory) or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the artifact directory for the file backend or the database file for sqlite.
	Path string `yaml:"path"`
}

// SearchConfig holds query limits.
type SearchConfig struct {
	DefaultTopK         int `yaml:"default_top_k"`
	MaxTopK             int `yaml:"max_top_k"`
	CandidateMultiplier int `yaml:"candidate_multiplier"`
	MinCandidates       int `yaml:"min_candidates"`
	SuggestionLimit     int `yaml:"suggestion_limit"`
}

// WatchConfig holds corpus watch settings.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, expands paths, applies environment
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Root = expandPath(cfg.Corpus.Root, configDir)
	cfg.Storage.Path = expandPath(cfg.Storage.Path, configDir)
	if cfg.Embedding.ONNX.ModelPath != "" {
		cfg.Embedding.ONNX.ModelPath = expandPath(cfg.Embedding.ONNX.ModelPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides config values from the environment when the variables are set.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvCorpusRoot); v != "" {
		cfg.Corpus.Root = v
	}
	if v := os.Getenv(EnvEmbeddingAPIKey); v != "" {
		cfg.Embedding.HTTP.APIKey = v
	}
	if v := os.Getenv(EnvEmbeddingURL); v != "" {
		cfg.Embedding.HTTP.BaseURL = v
	}
}

// Validate rejects settings that cannot work at all.
func (c *Config) Validate() error {
	if !embedding.Strategy(c.Embedding.Strategy).Valid() {
		return fmt.Errorf("invalid embedding strategy %q (supported: tf, http, onnx)", c.Embedding.Strategy)
	}
	switch storage.Backend(c.Storage.Backend) {
	case storage.BackendFile, storage.BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend %q (supported: file, sqlite)", c.Storage.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Corpus.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk size %d", c.Corpus.ChunkSize)
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("default_top_k %d exceeds max_top_k %d", c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir,
// "~/" is the home directory, and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." || strings.HasPrefix(path, "../") {
		return filepath.Join(configDir, path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
