// Package parquet implements a batchwriter.Sink writing a Parquet file.
//
// The schema is derived from the first batch: string columns chr, id, ref,
// alt and (when the first batch carried line ids) line_idx, an int64 pos
// column and one double column per
// "preds/<method>/<column>". Every later batch must produce the same
// columns. Each batch is flushed as its own row group.
package parquet

import (
	"context"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/internal/fs"
)

// SchemaName is the name of the Parquet root node.
const SchemaName = "variant_effects"

// Sink writes flat batches to a Parquet file.
type Sink struct {
	out    io.WriteCloser
	path   string
	header batchwriter.HeaderLock
	schema *parquet.Schema
	index  map[string]int
	w      *parquet.Writer
	rows   []parquet.Row
	closed bool
}

var _ batchwriter.Sink = (*Sink)(nil)

// New returns a sink writing to out. out is closed by Close.
func New(out io.WriteCloser) *Sink {
	return &Sink{out: out}
}

// Create creates (or truncates) path and holds it locked until Close.
func Create(path string) (*Sink, error) {
	a, err := fs.CreateArtifact(fs.Default, path)
	if err != nil {
		return nil, veffgo.NewIOError("create", path, err)
	}
	s := New(a)
	s.path = path
	return s, nil
}

// Schema returns the locked schema, or nil before the first batch.
func (s *Sink) Schema() *parquet.Schema { return s.schema }

func buildSchema(columns []string) *parquet.Schema {
	group := make(parquet.Group, len(columns))
	for _, c := range columns {
		switch c {
		case batchwriter.ColPos:
			group[c] = parquet.Leaf(parquet.Int64Type)
		case batchwriter.ColChrom, batchwriter.ColID, batchwriter.ColRef, batchwriter.ColAlt, batchwriter.ColLineIdx:
			group[c] = parquet.String()
		default:
			group[c] = parquet.Leaf(parquet.DoubleType)
		}
	}
	return parquet.NewSchema(SchemaName, group)
}

// BatchWrite implements batchwriter.Sink.
func (s *Sink) BatchWrite(_ context.Context, f *batchwriter.Flat) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	cols, first, err := s.header.Check(f)
	if err != nil {
		return err
	}
	if first {
		s.schema = buildSchema(cols)
		s.index = make(map[string]int, len(cols))
		for i, path := range s.schema.Columns() {
			s.index[path[0]] = i
		}
		s.w = parquet.NewWriter(s.out, s.schema, parquet.Compression(&parquet.Zstd))
	}

	s.rows = s.rows[:0]
	for i := range f.Len() {
		row := make(parquet.Row, len(cols))
		str := func(col, v string) {
			row[s.index[col]] = parquet.ByteArrayValue([]byte(v)).Level(0, 0, s.index[col])
		}
		str(batchwriter.ColChrom, f.Chrom[i])
		str(batchwriter.ColID, f.ID[i])
		str(batchwriter.ColRef, f.Ref[i])
		str(batchwriter.ColAlt, f.Alt[i])
		if f.HasLineIdx() {
			str(batchwriter.ColLineIdx, f.LineIdx[i])
		}
		pos := s.index[batchwriter.ColPos]
		row[pos] = parquet.Int64Value(f.Pos[i]).Level(0, 0, pos)
		for _, p := range f.Preds {
			for j, c := range p.Columns {
				idx := s.index[batchwriter.PredColumn(p.Method, c)]
				row[idx] = parquet.DoubleValue(p.Values[j][i]).Level(0, 0, idx)
			}
		}
		s.rows = append(s.rows, row)
	}

	if _, err := s.w.WriteRows(s.rows); err != nil {
		return veffgo.NewIOError("write", s.path, err)
	}
	if err := s.w.Flush(); err != nil {
		return veffgo.NewIOError("flush", s.path, err)
	}
	return nil
}

// Close writes the file footer and closes the output. Without any batch no
// Parquet file can be described and the output is left empty. Close is
// idempotent.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.w != nil {
		if werr := s.w.Close(); werr != nil {
			err = veffgo.NewIOError("close", s.path, werr)
		}
	}
	if cerr := s.out.Close(); cerr != nil && err == nil {
		err = veffgo.NewIOError("close", s.path, cerr)
	}
	return err
}
