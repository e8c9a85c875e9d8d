package arraystore

import (
	"context"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
)

// BatchSink stores flat batches in an array store with the layout
//
//	metadata/variant/{chr,pos,id,ref,alt}
//	metadata/line_idx
//	preds/<method>/<column>
//
// so that every leaf grows by one chunk per batch. The set of leaves is
// locked by the first batch; metadata/line_idx exists only when that batch
// carried line ids.
type BatchSink struct {
	store  *Store
	header batchwriter.HeaderLock
}

var _ batchwriter.Sink = (*BatchSink)(nil)

// NewBatchSink returns a sink writing to store. The sink owns store and
// closes it.
func NewBatchSink(store *Store) *BatchSink {
	return &BatchSink{store: store}
}

// BatchWrite implements batchwriter.Sink.
func (s *BatchSink) BatchWrite(ctx context.Context, f *batchwriter.Flat) error {
	if s.store.closed {
		return veffgo.ErrClosed
	}
	prev := s.header
	if _, _, err := s.header.Check(f); err != nil {
		return err
	}
	if err := s.store.Write(ctx, flatTree(f)); err != nil {
		s.header = prev
		return err
	}
	return nil
}

// Close implements batchwriter.Sink.
func (s *BatchSink) Close() error { return s.store.Close() }

// BytesWritten returns the chunk bytes uploaded so far.
func (s *BatchSink) BytesWritten() int64 { return int64(s.store.bytes) }

func flatTree(f *batchwriter.Flat) Tree {
	preds := make(Tree, len(f.Preds))
	for _, p := range f.Preds {
		cols := make(Tree, len(p.Columns))
		for j, c := range p.Columns {
			cols[c] = p.Values[j]
		}
		preds[p.Method] = cols
	}
	metadata := Tree{
		"variant": Tree{
			"chr": f.Chrom,
			"pos": f.Pos,
			"id":  f.ID,
			"ref": f.Ref,
			"alt": f.Alt,
		},
	}
	if f.HasLineIdx() {
		metadata["line_idx"] = f.LineIdx
	}
	return Tree{
		"metadata": metadata,
		"preds":    preds,
	}
}
