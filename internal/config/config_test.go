package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
corpus:
  root: "/srv/corpus"
storage:
  backend: sqlite
  path: "/srv/index.db"
watch:
  enabled: true
  debounce: 500ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/corpus", cfg.Corpus.Root)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/srv/index.db", cfg.Storage.Path)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.Debug, "debug should default to false when unset")
}

func TestLoad_debugTrue(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Debug, "debug should be true when set in config")
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
corpus:
  root: "./corpus"
storage:
  path: "./data/index"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "corpus"), cfg.Corpus.Root)
	assert.Equal(t, filepath.Join(dir, "data", "index"), cfg.Storage.Path)
}

func TestLoad_tildeExpandsToHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := Load(writeConfig(t, "corpus:\n  root: \"~/legal\"\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "legal"), cfg.Corpus.Root)
}

func TestLoad_invalid(t *testing.T) {
	tests := map[string]string{
		"strategy": "embedding:\n  strategy: word2vec\n",
		"backend":  "storage:\n  backend: redis\n",
		"top_k":    "search:\n  default_top_k: 500\n  max_top_k: 100\n",
		"yaml":     "server: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err, "missing config file")
}

func TestLoad_environmentOverrides(t *testing.T) {
	t.Setenv(EnvEmbeddingAPIKey, "sk-test")
	t.Setenv(EnvCorpusRoot, "/env/corpus")
	cfg, err := Load(writeConfig(t, "embedding:\n  strategy: http\n  http:\n    api_key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Embedding.HTTP.APIKey, "environment wins over the file")
	assert.Equal(t, "/env/corpus", cfg.Corpus.Root)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Corpus.ChunkSize)
	assert.Equal(t, "tf", cfg.Embedding.Strategy)
	assert.Equal(t, 32, cfg.Embedding.BatchSize)
	assert.Equal(t, 2, cfg.Embedding.MinTokenCount)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
	assert.Equal(t, 100, cfg.Search.MaxTopK)
	assert.Equal(t, 5, cfg.Search.CandidateMultiplier)
	assert.Equal(t, 50, cfg.Search.MinCandidates)
	assert.Equal(t, 0.1, cfg.Ranking.AreaBoost)
	assert.Equal(t, 0.15, cfg.Ranking.PhraseBoost)
	assert.Equal(t, 0.15, cfg.Ranking.StatuteBoost)
	require.NotEmpty(t, cfg.Corpus.Extensions)
	assert.Equal(t, ".txt", cfg.Corpus.Extensions[0])
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestApplyDefaults_sqlitePath(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Backend: "sqlite"}}
	ApplyDefaults(cfg)
	assert.Equal(t, ".db", filepath.Ext(cfg.Storage.Path), "sqlite default path should be a .db file")
}

func TestCorpusConfig_AutoIndexOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		c := &CorpusConfig{}
		assert.True(t, c.AutoIndexOrDefault())
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		c := &CorpusConfig{AutoIndex: &f}
		assert.False(t, c.AutoIndexOrDefault())
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{Backend: "file", Path: "/tmp/index"},
	}
	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, loaded.Server.Port)
	assert.Equal(t, "/tmp/index", loaded.Storage.Path)
}
