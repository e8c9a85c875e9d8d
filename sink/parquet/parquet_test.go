package parquet_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	parquetsink "github.com/hupe1980/veffgo/sink/parquet"
	"github.com/hupe1980/veffgo/testutil"
)

func TestSink_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preds.parquet")
	s, err := parquetsink.Create(path)
	require.NoError(t, err)

	w := batchwriter.New(s)
	rng := testutil.NewRNG(7)
	first := rng.Batch([]string{"m1"}, []string{"lo", "hi"}, 3)
	require.NoError(t, w.Write(ctx, first))
	require.NoError(t, w.Write(ctx, rng.Batch([]string{"m1"}, []string{"lo", "hi"}, 2)))

	err = w.Write(ctx, rng.Batch([]string{"m2"}, []string{"lo", "hi"}, 1))
	require.ErrorIs(t, err, veffgo.ErrSchema)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.NumRows())

	index := map[string]int{}
	for i, col := range f.Schema().Columns() {
		index[col[0]] = i
	}
	assert.Len(t, index, 8)
	require.Contains(t, index, "preds/m1/lo")

	r := parquet.NewReader(bytes.NewReader(data))
	defer r.Close()
	rows := make([]parquet.Row, 5)
	n, err := r.ReadRows(rows)
	if !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	require.Equal(t, 5, n)

	assert.Equal(t, "chr1", string(rows[0][index["chr"]].ByteArray()))
	assert.Equal(t, int64(20), rows[1][index["pos"]].Int64())
	assert.Equal(t, "r3", string(rows[2][index["line_idx"]].ByteArray()))
	assert.Equal(t, first.Predictions["m1"].Row(1)[0], rows[1][index["preds/m1/lo"]].Double())
}

func TestSink_NoLineIdxColumn(t *testing.T) {
	out := &bufCloser{}
	w := batchwriter.New(parquetsink.New(out))
	b := testutil.NewRNG(3).Batch([]string{"m1"}, []string{"x"}, 2)
	b.LineIDs = nil
	require.NoError(t, w.Write(context.Background(), b))
	require.NoError(t, w.Close())

	f, err := parquet.OpenFile(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	var names []string
	for _, col := range f.Schema().Columns() {
		names = append(names, col[0])
	}
	assert.Len(t, names, 6)
	assert.NotContains(t, names, batchwriter.ColLineIdx)
}

type bufCloser struct{ bytes.Buffer }

func (*bufCloser) Close() error { return nil }

func TestSink_CloseWithoutBatch(t *testing.T) {
	out := &bufCloser{}
	s := parquetsink.New(out)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Zero(t, out.Len())
	assert.Nil(t, s.Schema())
}
