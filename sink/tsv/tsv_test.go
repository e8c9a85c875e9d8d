package tsv_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/sink/tsv"
	"github.com/hupe1980/veffgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch(n int, lineIDs bool, methods ...string) veffgo.Batch {
	preds := make(map[string]*veffgo.PredictionTable, len(methods))
	for _, m := range methods {
		rows := make([][]float64, n)
		for i := range rows {
			rows[i] = []float64{float64(i) / 10, float64(i)}
		}
		preds[m] = veffgo.MustPredictionTable([]string{"lo", "hi"}, rows)
	}
	b := veffgo.Batch{Predictions: preds, Records: testutil.Records(n)}
	if lineIDs {
		b.LineIDs = testutil.LineIDs(n)
	}
	return b
}

func TestSink_WritesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := batchwriter.New(tsv.NewWriter(&buf))

	require.NoError(t, w.Write(ctx, batch(2, true, "m1")))
	require.NoError(t, w.Write(ctx, batch(1, true, "m1")))
	require.NoError(t, w.Close())

	want := "chr\tpos\tid\tref\talt\tline_idx\tpreds/m1/lo\tpreds/m1/hi\n" +
		"chr1\t10\trs1\tA\tC\tr1\t0\t0\n" +
		"chr1\t20\trs2\tC\tG\tr2\t0.1\t1\n" +
		"chr1\t10\trs1\tA\tC\tr1\t0\t0\n"
	assert.Equal(t, want, buf.String())
}

func TestSink_NoLineIDs(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := batchwriter.New(tsv.NewWriter(&buf))

	require.NoError(t, w.Write(ctx, batch(1, false, "m1")))
	require.ErrorIs(t, w.Write(ctx, batch(1, true, "m1")), veffgo.ErrSchema)
	require.NoError(t, w.Close())

	want := "chr\tpos\tid\tref\talt\tpreds/m1/lo\tpreds/m1/hi\n" +
		"chr1\t10\trs1\tA\tC\t0\t0\n"
	assert.Equal(t, want, buf.String())
}

func TestSink_HeaderMismatch(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	s := tsv.NewWriter(&buf, tsv.WithFloatFormat(veffgo.FormatFixed8))
	w := batchwriter.New(s)

	require.NoError(t, w.Write(ctx, batch(1, true, "m1")))
	size := buf.Len()

	err := w.Write(ctx, batch(1, true, "m1", "m2"))
	require.ErrorIs(t, err, veffgo.ErrSchema)
	var hm *batchwriter.ErrHeaderMismatch
	require.ErrorAs(t, err, &hm)
	assert.Equal(t, s.Columns(), hm.Expected)
	assert.Equal(t, size, buf.Len())
	assert.Contains(t, buf.String(), "0.00000000\t0.00000000")
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preds.tsv")
	s, err := tsv.Create(path)
	require.NoError(t, err)

	w := batchwriter.New(s)
	require.NoError(t, w.Write(context.Background(), batch(1, true, "m")))
	require.NoError(t, w.Close())
	require.ErrorIs(t, s.BatchWrite(context.Background(), &batchwriter.Flat{}), veffgo.ErrClosed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), s.BytesWritten())
	assert.Contains(t, string(data), "preds/m/lo")
}
