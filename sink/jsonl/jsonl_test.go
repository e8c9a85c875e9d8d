package jsonl_test

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/codec"
	"github.com/hupe1980/veffgo/sink/jsonl"
	"github.com/hupe1980/veffgo/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestSink_Rows(t *testing.T) {
	ctx := context.Background()
	out := &bufCloser{}
	w := batchwriter.New(jsonl.New(out, jsonl.WithCodec(codec.JSON{})))

	require.NoError(t, w.Write(ctx, veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{
			"m1": veffgo.MustPredictionTable([]string{"lo", "hi"}, [][]float64{{0.1, 0.2}, {0.3, 0.4}}),
		},
		Records: testutil.Records(2),
		LineIDs: []string{"r1", "r2"},
	}))
	require.NoError(t, w.Close())
	assert.True(t, out.closed)

	want := `{"chr":"chr1","pos":10,"id":"rs1","ref":"A","alt":"C","line_idx":"r1","preds":{"m1":{"hi":0.2,"lo":0.1}}}` + "\n" +
		`{"chr":"chr1","pos":20,"id":"rs2","ref":"C","alt":"G","line_idx":"r2","preds":{"m1":{"hi":0.4,"lo":0.3}}}` + "\n"
	assert.Equal(t, want, out.String())
}

func TestSink_OmitsAbsentLineIdx(t *testing.T) {
	out := &bufCloser{}
	w := batchwriter.New(jsonl.New(out, jsonl.WithCodec(codec.JSON{})))

	require.NoError(t, w.Write(context.Background(), veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{
			"m1": veffgo.MustPredictionTable([]string{"x"}, [][]float64{{1}}),
		},
		Records: testutil.Records(1),
	}))

	assert.Equal(t, `{"chr":"chr1","pos":10,"id":"rs1","ref":"A","alt":"C","preds":{"m1":{"x":1}}}`+"\n", out.String())
}

func TestSink_NaNFailsWholeBatch(t *testing.T) {
	out := &bufCloser{}
	s := jsonl.New(out)

	err := batchwriter.New(s).Write(context.Background(), veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{
			"m": veffgo.MustPredictionTable([]string{"x"}, [][]float64{{1}, {math.NaN()}}),
		},
		Records: testutil.Records(2),
	})
	require.Error(t, err)
	assert.Zero(t, out.Len())
	assert.Zero(t, s.BytesWritten())
}

func TestCreate_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds.jsonl.gz")
	s, err := jsonl.Create(path)
	require.NoError(t, err)

	w := batchwriter.New(s)
	require.NoError(t, w.Write(context.Background(), testutil.NewRNG(1).Batch([]string{"m"}, []string{"x"}, 3)))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	lines := 0
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		var row jsonl.Row
		require.NoError(t, codec.Default.Unmarshal(sc.Bytes(), &row))
		assert.Equal(t, "chr1", row.Chrom)
		assert.Contains(t, row.Preds, "m")
		lines++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 3, lines)
}
