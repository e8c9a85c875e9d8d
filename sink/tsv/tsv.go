// Package tsv implements a batchwriter.Sink writing tab-separated text.
//
// The header row is taken from the first batch:
//
//	chr pos id ref alt [line_idx] preds/<method>/<column>...
//
// and every later batch must produce the same columns. line_idx is present
// only when the first batch carried line ids.
package tsv

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/internal/fs"
)

// Sink writes flat batches as TSV rows.
type Sink struct {
	out    io.WriteCloser
	path   string
	format veffgo.FloatFormat
	header batchwriter.HeaderLock
	buf    bytes.Buffer
	closed bool
	bytes  int64
}

var _ batchwriter.Sink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithFloatFormat selects how prediction values are rendered.
func WithFloatFormat(f veffgo.FloatFormat) Option {
	return func(s *Sink) {
		s.format = f
	}
}

// New returns a sink writing to out. out is closed by Close.
func New(out io.WriteCloser, optFns ...Option) *Sink {
	s := &Sink{out: out}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Create creates (or truncates) path and holds it locked until Close.
// Paths ending in ".gz" are gzip-compressed.
func Create(path string, optFns ...Option) (*Sink, error) {
	out, err := fs.CreateOutput(fs.Default, path)
	if err != nil {
		return nil, veffgo.NewIOError("create", path, err)
	}
	s := New(out, optFns...)
	s.path = path
	return s, nil
}

// Columns returns the locked header, or nil before the first batch.
func (s *Sink) Columns() []string { return s.header.Columns() }

// BytesWritten returns the number of bytes handed to the output.
func (s *Sink) BytesWritten() int64 { return s.bytes }

// BatchWrite implements batchwriter.Sink. The batch is encoded in memory and
// written with a single call.
func (s *Sink) BatchWrite(_ context.Context, f *batchwriter.Flat) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	cols, first, err := s.header.Check(f)
	if err != nil {
		return err
	}

	s.buf.Reset()
	w := csv.NewWriter(&s.buf)
	w.Comma = '\t'
	if first {
		if err := w.Write(cols); err != nil {
			return err
		}
	}
	row := make([]string, len(cols))
	for i := range f.Len() {
		row = row[:0]
		row = append(row, f.Chrom[i], strconv.FormatInt(f.Pos[i], 10), f.ID[i], f.Ref[i], f.Alt[i])
		if f.HasLineIdx() {
			row = append(row, f.LineIdx[i])
		}
		for _, p := range f.Preds {
			for j := range p.Columns {
				row = append(row, s.format.Format(p.Values[j][i]))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	n, err := s.out.Write(s.buf.Bytes())
	s.bytes += int64(n)
	if err != nil {
		return veffgo.NewIOError("write", s.path, err)
	}
	return nil
}

// Close closes the output. It is idempotent.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.out.Close(); err != nil {
		return veffgo.NewIOError("close", s.path, err)
	}
	return nil
}

// nopCloser adapts a writer the sink must not close.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NewWriter returns a sink writing to w without taking ownership of it.
func NewWriter(w io.Writer, optFns ...Option) *Sink {
	return New(nopCloser{w}, optFns...)
}
