package bed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChrom(t *testing.T) {
	tests := map[string]string{
		"1":     "chr1",
		"chr1":  "chr1",
		"X":     "chrX",
		"chrUn": "chrUn",
		"MT":    "chrMT",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeChrom(in), in)
	}
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.bed")
	w, err := Create(path)
	require.NoError(t, err)

	require.NoError(t, w.AppendInterval("1", 100, 200, "r1"))
	require.NoError(t, w.Write(
		Interval{Chrom: "chr2", Start: 1, End: 10, ID: "r2"},
		Interval{Chrom: "X", Start: 5, End: 6, ID: "r3"},
	))
	assert.Equal(t, int64(3), w.Rows())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.AppendInterval("1", 1, 2, "x"), veffgo.ErrClosed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t99\t200\tr1\nchr2\t0\t10\tr2\nchrX\t4\t6\tr3\n", string(data))
}

func TestWriter_IOError(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".bed", fs.Fault{FailAfterBytes: 0})
	out, err := fs.CreateOutput(ffs, filepath.Join(t.TempDir(), "x.bed"))
	require.NoError(t, err)

	w := New(out)
	require.ErrorIs(t, w.AppendInterval("1", 1, 2, "r"), veffgo.ErrIO)
	require.NoError(t, w.Close())
}
