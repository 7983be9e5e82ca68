package config

import (
	"time"

	"github.com/hyperjump/jurisearch/internal/corpus"
	"github.com/hyperjump/jurisearch/internal/embedding"
	"github.com/hyperjump/jurisearch/internal/extract"
	"github.com/hyperjump/jurisearch/internal/models"
	"github.com/hyperjump/jurisearch/internal/storage"
)

// DefaultBatchSize is the number of passages sent to a pretrained embedder per call.
const DefaultBatchSize = 32

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.Root == "" {
		cfg.Corpus.Root = "/usr/local/var/jurisearch/corpus"
	}
	if cfg.Corpus.ChunkSize == 0 {
		cfg.Corpus.ChunkSize = corpus.DefaultChunkSize
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = append([]string(nil), extract.DefaultExtensions...)
	}
	if cfg.Embedding.Strategy == "" {
		cfg.Embedding.Strategy = string(embedding.StrategyTF)
	}
	if cfg.Embedding.MinTokenCount == 0 {
		cfg.Embedding.MinTokenCount = embedding.DefaultMinCount
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = DefaultBatchSize
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.HTTP.Timeout == 0 {
		cfg.Embedding.HTTP.Timeout = 30 * time.Second
	}
	if cfg.Embedding.ONNX.ModelPath == "" {
		cfg.Embedding.ONNX.ModelPath = "/usr/local/var/jurisearch/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.ONNX.Dimensions == 0 {
		cfg.Embedding.ONNX.Dimensions = 384
	}
	if cfg.Embedding.ONNX.MaxTokens == 0 {
		cfg.Embedding.ONNX.MaxTokens = 256
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = string(storage.BackendFile)
	}
	if cfg.Storage.Path == "" {
		if cfg.Storage.Backend == string(storage.BackendSQLite) {
			cfg.Storage.Path = "/usr/local/var/jurisearch/data/index.db"
		} else {
			cfg.Storage.Path = "/usr/local/var/jurisearch/data/index"
		}
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = models.DefaultTopK
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = models.MaxTopK
	}
	if cfg.Search.CandidateMultiplier == 0 {
		cfg.Search.CandidateMultiplier = 5
	}
	if cfg.Search.MinCandidates == 0 {
		cfg.Search.MinCandidates = 50
	}
	if cfg.Search.SuggestionLimit == 0 {
		cfg.Search.SuggestionLimit = 3
	}
	cfg.Ranking.ApplyDefaults()
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 2 * time.Second
	}
}
