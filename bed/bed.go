// Package bed writes genomic intervals as BED lines.
//
// Intervals are given 1-based and inclusive, as in VCF, and written with a
// 0-based start. Chromosome names are normalised to carry a "chr" prefix.
package bed

import (
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/internal/fs"
)

// Interval is one region, 1-based and inclusive.
type Interval struct {
	Chrom string
	Start int64
	End   int64
	ID    string
}

// Writer appends intervals to a BED stream.
type Writer struct {
	out    io.WriteCloser
	path   string
	buf    []byte
	rows   int64
	closed bool
}

// New returns a writer emitting to out. out is closed by Close.
func New(out io.WriteCloser) *Writer {
	return &Writer{out: out}
}

// Create creates (or truncates) path and holds it locked until Close.
// Paths ending in ".gz" are gzip-compressed.
func Create(path string) (*Writer, error) {
	out, err := fs.CreateOutput(fs.Default, path)
	if err != nil {
		return nil, veffgo.NewIOError("create", path, err)
	}
	return &Writer{out: out, path: path}, nil
}

// NormalizeChrom returns chrom with exactly one leading "chr".
func NormalizeChrom(chrom string) string {
	return "chr" + strings.TrimPrefix(chrom, "chr")
}

// Rows returns the number of intervals written.
func (w *Writer) Rows() int64 { return w.rows }

// AppendInterval writes one interval.
func (w *Writer) AppendInterval(chrom string, start, end int64, id string) error {
	return w.Write(Interval{Chrom: chrom, Start: start, End: end, ID: id})
}

// Write writes intervals with a single call to the output.
func (w *Writer) Write(intervals ...Interval) error {
	if w.closed {
		return veffgo.ErrClosed
	}
	buf := w.buf[:0]
	for _, iv := range intervals {
		buf = append(buf, NormalizeChrom(iv.Chrom)...)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, iv.Start-1, 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, iv.End, 10)
		buf = append(buf, '\t')
		buf = append(buf, iv.ID...)
		buf = append(buf, '\n')
	}
	w.buf = buf
	if _, err := w.out.Write(buf); err != nil {
		return veffgo.NewIOError("write", w.path, err)
	}
	w.rows += int64(len(intervals))
	return nil
}

// Close closes the output. It is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.out.Close(); err != nil {
		return veffgo.NewIOError("close", w.path, err)
	}
	return nil
}
