package veffgo_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	batches  []veffgo.Batch
	writeErr error
	closeErr error
	closes   atomic.Int32
}

func (w *recordingWriter) Write(_ context.Context, b veffgo.Batch) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.batches = append(w.batches, b)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closes.Add(1)
	return w.closeErr
}

func TestGroup_WriteForwardsInOrder(t *testing.T) {
	a, b := &recordingWriter{}, &recordingWriter{}
	g := veffgo.NewGroup(a)
	g.Add(b)
	require.Equal(t, 2, g.Len())

	ctx := context.Background()
	for i := range 3 {
		batch := veffgo.Batch{
			Predictions: map[string]*veffgo.PredictionTable{"m": testutil.Table([]string{"x"}, i+1, int64(i))},
			Records:     testutil.Records(i + 1),
		}
		require.NoError(t, g.Write(ctx, batch))
	}

	for _, w := range []*recordingWriter{a, b} {
		require.Len(t, w.batches, 3)
		for i, batch := range w.batches {
			assert.Equal(t, i+1, batch.Len())
		}
	}
}

func TestGroup_RejectsInvalidBatchBeforeForwarding(t *testing.T) {
	a := &recordingWriter{}
	g := veffgo.NewGroup(a)

	err := g.Write(context.Background(), veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{"m": testutil.Table([]string{"x"}, 2, 1)},
		Records:     testutil.Records(3),
	})
	require.ErrorIs(t, err, veffgo.ErrStructural)
	assert.Empty(t, a.batches)
}

func TestGroup_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recordingWriter{writeErr: boom}, &recordingWriter{}
	g := veffgo.NewGroup(a, b)

	err := g.Write(context.Background(), veffgo.Batch{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "writer 0")
	assert.Empty(t, b.batches)
}

func TestGroup_CanceledContext(t *testing.T) {
	a := &recordingWriter{}
	g := veffgo.NewGroup(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, g.Write(ctx, veffgo.Batch{}), context.Canceled)
	assert.Empty(t, a.batches)
}

func TestGroup_CloseIsIdempotentAndJoinsErrors(t *testing.T) {
	e1, e2 := errors.New("e1"), errors.New("e2")
	ws := []*recordingWriter{{closeErr: e1}, {}, {closeErr: e2}, {}, {}, {}}
	g := veffgo.NewGroup()
	for _, w := range ws {
		g.Add(w)
	}

	err := g.Close()
	require.ErrorIs(t, err, e1)
	require.ErrorIs(t, err, e2)
	require.NoError(t, g.Close())

	for _, w := range ws {
		assert.Equal(t, int32(1), w.closes.Load())
	}
	require.ErrorIs(t, g.Write(context.Background(), veffgo.Batch{}), veffgo.ErrClosed)
}

func TestCloseAll(t *testing.T) {
	a, b := &recordingWriter{}, &recordingWriter{}
	require.NoError(t, veffgo.CloseAll(a, b))
	assert.Equal(t, int32(1), a.closes.Load())
	assert.Equal(t, int32(1), b.closes.Load())
}

func TestBasicMetricsCollector(t *testing.T) {
	m := &veffgo.BasicMetricsCollector{}
	m.RecordWrite("w", 10, 2*time.Millisecond, nil)
	m.RecordWrite("w", 5, 4*time.Millisecond, errors.New("x"))
	m.RecordClose("w", time.Millisecond, nil)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.WriteCount)
	assert.Equal(t, int64(1), stats.WriteErrors)
	assert.Equal(t, int64(10), stats.WriteRows)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.WriteAvgNanos)
	assert.Equal(t, int64(1), stats.CloseCount)
	assert.Zero(t, stats.CloseErrors)
}

func TestApplyOptions(t *testing.T) {
	o := veffgo.ApplyOptions("vcf")
	assert.Equal(t, "vcf", o.WriterName)
	assert.Equal(t, veffgo.FormatDefault, o.FloatFormat)
	assert.NotNil(t, o.Logger)
	assert.NotNil(t, o.IDGenerator)
	assert.False(t, o.StandardiseVarID)

	o = veffgo.ApplyOptions("vcf",
		veffgo.WithWriterName("custom"),
		veffgo.WithFloatFormat(veffgo.FormatFixed8),
		veffgo.WithStandardiseVarID(true),
		veffgo.WithLogger(nil),
		veffgo.WithMetricsCollector(nil),
	)
	assert.Equal(t, "custom", o.WriterName)
	assert.Equal(t, veffgo.FormatFixed8, o.FloatFormat)
	assert.True(t, o.StandardiseVarID)
	assert.IsType(t, veffgo.NoopMetricsCollector{}, o.MetricsCollector)
}
