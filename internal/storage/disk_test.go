package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(f1, []byte("hello"), 0644))
	sub := filepath.Join(dir, "artifacts")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a"), []byte("ab"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b"), []byte("c"), 0644))

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"file", []string{f1}, 5},
		{"dir", []string{sub}, 3},
		{"file and dir", []string{f1, sub}, 8},
		{"missing skipped", []string{f1, filepath.Join(dir, "nonexistent"), sub}, 8},
		{"empty skipped", []string{"", f1}, 5},
		{"none", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiskUsageBytes_storePaths(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	before, err := DiskUsageBytes(store.Paths()...)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sampleSnapshot("tf")))
	after, err := DiskUsageBytes(store.Paths()...)
	require.NoError(t, err)
	assert.Greater(t, after, before)
}
