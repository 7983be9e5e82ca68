package vector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/jurisearch/internal/models"
)

func newIndex(t *testing.T, dims int) *MemoryIndex {
	t.Helper()
	idx, err := NewMemoryIndex(dims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func resultIDs(results []*VectorResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx := newIndex(t, 3)
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	require.NoError(t, idx.Add(ctx, []string{"a", "b", "c"}, vecs))
	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, 3, idx.Dimensions())

	results, err := idx.Search(ctx, []float32{2, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"a", "b"}, resultIDs(results))
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestMemoryIndex_zeroQuery(t *testing.T) {
	idx := newIndex(t, 2)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}}))
	results, err := idx.Search(ctx, []float32{0, 0}, 5)
	require.NoError(t, err, "zero query must not error")
	assert.Empty(t, results)
}

func TestMemoryIndex_zeroStoredVector(t *testing.T) {
	idx := newIndex(t, 2)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []string{"empty", "x"}, [][]float32{{0, 0}, {0, 1}}))
	results, err := idx.Search(ctx, []float32{0, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "empty"}, resultIDs(results))
	assert.Zero(t, results[1].Score)
}

func TestMemoryIndex_dimensionMismatch(t *testing.T) {
	idx := newIndex(t, 3)
	ctx := context.Background()
	assert.ErrorIs(t, idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}}), models.ErrDimensionMismatch)
	assert.Zero(t, idx.Size(), "mismatched vector must not be added")
	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestMemoryIndex_tiesKeepInsertionOrder(t *testing.T) {
	idx := newIndex(t, 2)
	ctx := context.Background()
	ids := []string{"p1", "p2", "p3", "p4"}
	vecs := [][]float32{{1, 0}, {1, 0}, {1, 0}, {1, 0}}
	require.NoError(t, idx.Add(ctx, ids, vecs))
	for run := 0; run < 5; run++ {
		results, err := idx.Search(ctx, []float32{1, 0}, 4)
		require.NoError(t, err)
		require.Equal(t, ids, resultIDs(results), "run %d", run)
	}
}

func TestMemoryIndex_topKBound(t *testing.T) {
	idx := newIndex(t, 1)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []string{"a", "b"}, [][]float32{{1}, {1}}))
	for _, k := range []int{0, 1, 2, 10} {
		results, err := idx.Search(ctx, []float32{1}, k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), k, "k=%d", k)
	}
}

func TestMemoryIndex_duplicateID(t *testing.T) {
	idx := newIndex(t, 1)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []string{"a"}, [][]float32{{1}}))

	assert.Error(t, idx.Add(ctx, []string{"a"}, [][]float32{{1}}), "existing id")
	assert.Error(t, idx.Add(ctx, []string{"b", "b"}, [][]float32{{1}, {1}}), "id repeated within one call")
}

func TestMemoryIndex_failedAddLeavesIndexUnchanged(t *testing.T) {
	idx := newIndex(t, 1)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []string{"a"}, [][]float32{{1}}))

	require.Error(t, idx.Add(ctx, []string{"b", "a"}, [][]float32{{0.5}, {1}}))
	assert.Equal(t, 1, idx.Size())
	assert.Equal(t, []string{"a"}, idx.IDs())
	_, ok := idx.Vector("b")
	assert.False(t, ok, "b precedes the duplicate and must not be stored")

	require.Error(t, idx.Add(ctx, []string{"c", "d", "c"}, [][]float32{{1}, {1}, {1}}))
	assert.Equal(t, 1, idx.Size())

	require.NoError(t, idx.Add(ctx, []string{"b"}, [][]float32{{0.5}}), "b is still free after the failed batch")
	results, err := idx.Search(ctx, []float32{1}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resultIDs(results))
}

func TestMemoryIndex_Vector(t *testing.T) {
	idx := newIndex(t, 2)
	require.NoError(t, idx.Add(context.Background(), []string{"a"}, [][]float32{{0.6, 0.8}}))
	v, ok := idx.Vector("a")
	require.True(t, ok)
	assert.Equal(t, []float32{0.6, 0.8}, v)
	v[0] = 9
	again, _ := idx.Vector("a")
	assert.Equal(t, float32(0.6), again[0], "Vector must return a copy")
	_, ok = idx.Vector("missing")
	assert.False(t, ok, "missing id should not be found")
	assert.Equal(t, []string{"a"}, idx.IDs())
}

func TestEncodeDecodeFloat32s(t *testing.T) {
	in := []float32{0, -1.5, 3.25, float32(math.Inf(1))}
	out, err := DecodeFloat32s(EncodeFloat32s(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = DecodeFloat32s([]byte{1, 2, 3})
	assert.Error(t, err, "truncated blob")
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{3, 4}, []float32{6, 8}), 1e-9, "parallel vectors")
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{0, 1}), "orthogonal vectors")
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 0}), "zero vector")
}
