package batchwriter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) BatchWrite(ctx context.Context, f *batchwriter.Flat) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestFlatten(t *testing.T) {
	b := veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{
			"m2": veffgo.MustPredictionTable([]string{"lo", "hi"}, [][]float64{{0.1, 0.2}, {0.3, 0.4}}),
			"m1": veffgo.MustPredictionTable([]string{"lo", "hi"}, [][]float64{{1, 2}, {3, 4}}),
		},
		Records: testutil.Records(2),
		LineIDs: []string{"r1", "r2"},
	}

	f := batchwriter.Flatten(b)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"chr1", "chr1"}, f.Chrom)
	assert.Equal(t, []int64{10, 20}, f.Pos)
	assert.Equal(t, []string{"rs1", "rs2"}, f.ID)
	assert.Equal(t, []string{"A", "C"}, f.Ref)
	assert.Equal(t, []string{"C", "G"}, f.Alt)
	assert.Equal(t, []string{"r1", "r2"}, f.LineIdx)

	require.Len(t, f.Preds, 2)
	assert.Equal(t, "m1", f.Preds[0].Method)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, f.Preds[0].Values)
	assert.Equal(t, "m2", f.Preds[1].Method)
	assert.Equal(t, [][]float64{{0.1, 0.3}, {0.2, 0.4}}, f.Preds[1].Values)

	assert.Equal(t, []string{
		"chr", "pos", "id", "ref", "alt", "line_idx",
		"preds/m1/lo", "preds/m1/hi", "preds/m2/lo", "preds/m2/hi",
	}, f.ColumnNames())
}

func TestFlatten_NoLineIDs(t *testing.T) {
	f := batchwriter.Flatten(veffgo.Batch{Records: testutil.Records(3)})
	assert.False(t, f.HasLineIdx())
	assert.Nil(t, f.LineIdx)
	assert.Empty(t, f.Preds)
	assert.Equal(t, []string{"chr", "pos", "id", "ref", "alt"}, f.ColumnNames())
}

func TestHeaderLock_LineIdxPresence(t *testing.T) {
	var lock batchwriter.HeaderLock
	with := veffgo.Batch{Records: testutil.Records(1), LineIDs: testutil.LineIDs(1)}
	without := veffgo.Batch{Records: testutil.Records(1)}

	_, first, err := lock.Check(batchwriter.Flatten(with))
	require.NoError(t, err)
	assert.True(t, first)

	_, _, err = lock.Check(batchwriter.Flatten(without))
	require.ErrorIs(t, err, veffgo.ErrSchema)
	var hm *batchwriter.ErrHeaderMismatch
	require.ErrorAs(t, err, &hm)
	assert.Contains(t, hm.Expected, batchwriter.ColLineIdx)
	assert.NotContains(t, hm.Actual, batchwriter.ColLineIdx)
}

func TestWriter_Forwards(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	sink.On("BatchWrite", ctx, mock.MatchedBy(func(f *batchwriter.Flat) bool { return f.Len() == 3 })).Return(nil).Once()
	sink.On("BatchWrite", ctx, mock.MatchedBy(func(f *batchwriter.Flat) bool { return f.Len() == 2 })).Return(nil).Once()
	sink.On("Close").Return(nil).Once()

	metrics := &veffgo.BasicMetricsCollector{}
	w := batchwriter.New(sink, veffgo.WithMetricsCollector(metrics))

	rng := testutil.NewRNG(1)
	require.NoError(t, w.Write(ctx, rng.Batch([]string{"a"}, []string{"x"}, 3)))
	require.NoError(t, w.Write(ctx, rng.Batch([]string{"a"}, []string{"x"}, 2)))
	require.NoError(t, w.Write(ctx, veffgo.Batch{}))
	assert.Equal(t, int64(5), w.Rows())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.Write(ctx, rng.Batch([]string{"a"}, []string{"x"}, 1)), veffgo.ErrClosed)

	sink.AssertExpectations(t)
	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.WriteCount)
	assert.Equal(t, int64(5), stats.WriteRows)
	assert.Equal(t, int64(1), stats.CloseCount)
}

func TestWriter_StructuralErrorNotForwarded(t *testing.T) {
	sink := new(MockSink)
	w := batchwriter.New(sink)

	b := veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{"m": testutil.Table([]string{"x"}, 2, 1)},
		Records:     testutil.Records(3),
	}
	err := w.Write(context.Background(), b)
	require.ErrorIs(t, err, veffgo.ErrStructural)

	var rc *veffgo.ErrRowCountMismatch
	require.ErrorAs(t, err, &rc)
	assert.Equal(t, "m", rc.Method)
	sink.AssertNotCalled(t, "BatchWrite", mock.Anything, mock.Anything)
}

func TestWriter_SinkErrorAndClose(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("sink down")
	sink := new(MockSink)
	sink.On("BatchWrite", ctx, mock.Anything).Return(boom)
	sink.On("Close").Return(boom).Once()

	w := batchwriter.New(sink)
	require.ErrorIs(t, w.Write(ctx, testutil.NewRNG(2).Batch([]string{"a"}, []string{"x"}, 1)), boom)
	assert.Zero(t, w.Rows())

	require.ErrorIs(t, w.Close(), boom)
	require.NoError(t, w.Close())
	sink.AssertExpectations(t)
}

func TestWriter_StandardiseVarID(t *testing.T) {
	ctx := context.Background()
	var got *batchwriter.Flat
	sink := new(MockSink)
	sink.On("BatchWrite", ctx, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(*batchwriter.Flat)
	}).Return(nil)

	w := batchwriter.New(sink, veffgo.WithStandardiseVarID(true))
	require.NoError(t, w.Write(ctx, veffgo.Batch{Records: testutil.Records(2)}))
	require.NotNil(t, got)
	assert.Equal(t, []string{"chr1:10:A:C", "chr1:20:C:G"}, got.ID)
}
