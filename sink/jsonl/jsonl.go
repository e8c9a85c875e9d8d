// Package jsonl implements a batchwriter.Sink writing one JSON object per
// record:
//
//	{"chr":"chr1","pos":10,"id":"rs1","ref":"A","alt":"C","line_idx":"r1","preds":{"m1":{"hi":0.2,"lo":0.1}}}
//
// line_idx is omitted for batches without line ids.
package jsonl

import (
	"context"
	"io"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/codec"
	"github.com/hupe1980/veffgo/internal/fs"
)

// Row is the JSON shape of one record.
type Row struct {
	Chrom   string                        `json:"chr"`
	Pos     int64                         `json:"pos"`
	ID      string                        `json:"id"`
	Ref     string                        `json:"ref"`
	Alt     string                        `json:"alt"`
	LineIdx *string                       `json:"line_idx,omitempty"`
	Preds   map[string]map[string]float64 `json:"preds"`
}

// Sink writes flat batches as JSON lines.
type Sink struct {
	out    io.WriteCloser
	path   string
	codec  codec.Codec
	buf    []byte
	bytes  int64
	closed bool
}

var _ batchwriter.Sink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithCodec selects the JSON codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Sink) {
		if c != nil {
			s.codec = c
		}
	}
}

// New returns a sink writing to out. out is closed by Close.
func New(out io.WriteCloser, optFns ...Option) *Sink {
	s := &Sink{out: out, codec: codec.Default}
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

// BytesWritten returns the number of bytes handed to the output.
func (s *Sink) BytesWritten() int64 { return s.bytes }

// BatchWrite implements batchwriter.Sink. A value that cannot be encoded
// (NaN, ±Inf) fails the whole batch before anything is written.
func (s *Sink) BatchWrite(_ context.Context, f *batchwriter.Flat) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	buf := s.buf[:0]
	for i := range f.Len() {
		row := Row{
			Chrom:   f.Chrom[i],
			Pos:     f.Pos[i],
			ID:      f.ID[i],
			Ref:     f.Ref[i],
			Alt:     f.Alt[i],
			Preds:   make(map[string]map[string]float64, len(f.Preds)),
		}
		if f.HasLineIdx() {
			row.LineIdx = &f.LineIdx[i]
		}
		for _, p := range f.Preds {
			cols := make(map[string]float64, len(p.Columns))
			for j, c := range p.Columns {
				cols[c] = p.Values[j][i]
			}
			row.Preds[p.Method] = cols
		}
		var err error
		if buf, err = codec.AppendLine(s.codec, buf, row); err != nil {
			return err
		}
	}
	s.buf = buf

	n, err := s.out.Write(buf)
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
