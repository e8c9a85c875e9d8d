package arraystore_test

import (
	"context"
	"testing"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/arraystore"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/blobstore"
	"github.com/hupe1980/veffgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchSink_Layout(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store, err := arraystore.Create(ctx, blobs)
	require.NoError(t, err)

	w := batchwriter.New(arraystore.NewBatchSink(store))
	rng := testutil.NewRNG(3)
	first := rng.Batch([]string{"m1", "m2"}, []string{"lo", "hi"}, 3)
	require.NoError(t, w.Write(ctx, first))
	require.NoError(t, w.Write(ctx, rng.Batch([]string{"m1", "m2"}, []string{"lo", "hi"}, 2)))
	require.NoError(t, w.Close())

	r, err := arraystore.Open(ctx, blobs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"metadata/line_idx",
		"metadata/variant/alt",
		"metadata/variant/chr",
		"metadata/variant/id",
		"metadata/variant/pos",
		"metadata/variant/ref",
		"preds/m1/hi",
		"preds/m1/lo",
		"preds/m2/hi",
		"preds/m2/lo",
	}, r.Paths())

	for _, p := range r.Paths() {
		leaf, ok := r.Leaf(p)
		require.True(t, ok)
		assert.Equal(t, 5, leaf.Rows(), p)
		assert.Len(t, leaf.Chunks, 2, p)
	}

	pos, err := r.Read(ctx, "metadata/variant/pos")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 10, 20}, pos.Data())

	lo, err := r.Read(ctx, "preds/m1/lo")
	require.NoError(t, err)
	values, ok := arraystore.Values[float64](lo)
	require.True(t, ok)
	assert.Equal(t, first.Predictions["m1"].Column(0), values[:3])
}

func TestBatchSink_StructuralErrorLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store, err := arraystore.Create(ctx, blobs)
	require.NoError(t, err)

	w := batchwriter.New(arraystore.NewBatchSink(store))
	defer w.Close()

	err = w.Write(ctx, veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{"m": testutil.Table([]string{"x"}, 2, 1)},
		Records:     testutil.Records(2),
		LineIDs:     []string{"r1"},
	})
	require.ErrorIs(t, err, veffgo.ErrStructural)
	assert.Empty(t, store.Paths())
}

func TestBatchSink_LineIdxLockedByFirstBatch(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store, err := arraystore.Create(ctx, blobs)
	require.NoError(t, err)

	w := batchwriter.New(arraystore.NewBatchSink(store))
	rng := testutil.NewRNG(4)
	b := rng.Batch([]string{"m1"}, []string{"x"}, 2)
	b.LineIDs = nil
	require.NoError(t, w.Write(ctx, b))

	err = w.Write(ctx, rng.Batch([]string{"m1"}, []string{"x"}, 1))
	require.ErrorIs(t, err, veffgo.ErrSchema)
	assert.Equal(t, int64(2), store.Rows())
	require.NoError(t, w.Close())

	r, err := arraystore.Open(ctx, blobs)
	require.NoError(t, err)
	assert.NotContains(t, r.Paths(), "metadata/line_idx")
	for _, p := range r.Paths() {
		leaf, _ := r.Leaf(p)
		assert.Equal(t, 2, leaf.Rows(), p)
	}
}

func TestSeqWriter_KeepsSequenceSets(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	w, err := arraystore.NewSeqWriter(ctx, blobs)
	require.NoError(t, err)

	for range 2 {
		err := w.Write(ctx, map[string]any{
			"ref":          []string{"ACGT", "AAGT"},
			"alt":          []string{"AGGT", "ATGT"},
			"ref_rc":       []string{"ACGT", "ACTT"},
			"alt_rc":       nil,
			"mutation_pos": []int64{1, 1},
		})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r, err := arraystore.Open(ctx, blobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "ref", "ref_rc"}, r.Paths())

	ref, err := r.Read(ctx, "ref")
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGT", "AAGT", "ACGT", "AAGT"}, ref.Data())
}
