package veffgo_test

import (
	"errors"
	"testing"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBatch(t *testing.T) {
	records := testutil.Records(3)
	cols := []string{"lo", "hi"}

	tests := []struct {
		name    string
		preds   map[string]*veffgo.PredictionTable
		lineIDs []string
		check   func(t *testing.T, err error)
	}{
		{
			name:  "aligned",
			preds: map[string]*veffgo.PredictionTable{"m1": testutil.Table(cols, 3, 1)},
			check: func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			name:    "aligned with line ids",
			preds:   map[string]*veffgo.PredictionTable{"m1": testutil.Table(cols, 3, 1)},
			lineIDs: []string{"a", "b", "c"},
			check:   func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			name: "row count mismatch",
			preds: map[string]*veffgo.PredictionTable{
				"a": testutil.Table(cols, 3, 1),
				"b": testutil.Table(cols, 2, 2),
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, veffgo.ErrStructural)
				var rc *veffgo.ErrRowCountMismatch
				require.True(t, errors.As(err, &rc))
				assert.Equal(t, "b", rc.Method)
				assert.Equal(t, 3, rc.Expected)
				assert.Equal(t, 2, rc.Actual)
			},
		},
		{
			name:  "nil table",
			preds: map[string]*veffgo.PredictionTable{"a": testutil.Table(cols, 3, 1), "b": nil},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, veffgo.ErrStructural)
				var nt *veffgo.ErrNilTable
				require.True(t, errors.As(err, &nt))
				assert.Equal(t, "b", nt.Method)
			},
		},
		{
			name:    "line id count mismatch",
			preds:   map[string]*veffgo.PredictionTable{"m1": testutil.Table(cols, 3, 1)},
			lineIDs: []string{"a"},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, veffgo.ErrStructural)
				var lc *veffgo.ErrLineIDCountMismatch
				require.True(t, errors.As(err, &lc))
				assert.Equal(t, 3, lc.Expected)
				assert.Equal(t, 1, lc.Actual)
			},
		},
		{
			name:    "empty line ids are present",
			preds:   map[string]*veffgo.PredictionTable{"m1": testutil.Table(cols, 3, 1)},
			lineIDs: []string{},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, veffgo.ErrStructural)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, veffgo.ValidateBatch(tt.preds, records, tt.lineIDs))
		})
	}
}

func TestBatchHelpers(t *testing.T) {
	b := veffgo.Batch{}
	assert.True(t, b.IsEmpty())
	assert.False(t, b.HasLineIDs())

	b = veffgo.Batch{
		Predictions: map[string]*veffgo.PredictionTable{
			"z": testutil.Table([]string{"x"}, 1, 1),
			"a": testutil.Table([]string{"x"}, 1, 2),
		},
		Records: testutil.Records(1),
		LineIDs: []string{"r1"},
	}
	assert.False(t, b.IsEmpty())
	assert.True(t, b.HasLineIDs())
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []string{"a", "z"}, b.Methods())
	require.NoError(t, b.Validate())
}

func TestPredictionTable(t *testing.T) {
	tbl, err := veffgo.NewPredictionTable([]string{"lo", "hi"}, [][]float64{{0.1, 0.2}, {0.3, 0.4}})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []float64{0.3, 0.4}, tbl.Row(1))
	assert.Equal(t, []float64{0.2, 0.4}, tbl.Column(1))

	_, err = veffgo.NewPredictionTable([]string{"lo", "hi"}, [][]float64{{0.1}})
	require.Error(t, err)
	assert.Panics(t, func() { veffgo.MustPredictionTable([]string{"a"}, [][]float64{{1, 2}}) })
}
