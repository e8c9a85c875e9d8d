package batchwriter

import (
	"context"
	"time"

	"github.com/hupe1980/veffgo"
)

// Sink accepts flat batches. It owns its output artifact and releases it on
// Close.
type Sink interface {
	BatchWrite(ctx context.Context, f *Flat) error
	Close() error
}

// sizer is implemented by sinks that can report their output size.
type sizer interface {
	BytesWritten() int64
}

// Writer flattens each batch and forwards it to a Sink.
//
// Apart from the row-count validation every writer performs, Writer applies
// no schema checks of its own; sinks with a fixed layout lock it themselves.
type Writer struct {
	sink   Sink
	opts   veffgo.Options
	logger *veffgo.Logger
	rows   int64
	closed bool
}

var _ veffgo.Writer = (*Writer)(nil)

// New returns a Writer forwarding to sink.
func New(sink Sink, optFns ...veffgo.Option) *Writer {
	opts := veffgo.ApplyOptions("batchwriter", optFns...)
	return &Writer{sink: sink, opts: opts, logger: opts.Logger}
}

// Rows returns the number of records forwarded.
func (w *Writer) Rows() int64 { return w.rows }

// Write validates b, flattens it and hands it to the sink. A batch without
// records is not forwarded.
func (w *Writer) Write(ctx context.Context, b veffgo.Batch) (err error) {
	if w.closed {
		return veffgo.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		d := time.Since(start)
		w.opts.MetricsCollector.RecordWrite(w.opts.WriterName, b.Len(), d, err)
		w.logger.LogBatch(ctx, b.Len(), len(b.Predictions), d, err)
	}()

	if err := b.Validate(); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}
	if w.opts.StandardiseVarID && w.opts.IDGenerator != nil {
		for _, r := range b.Records {
			r.SetID(w.opts.IDGenerator(r))
		}
	}

	if err := w.sink.BatchWrite(ctx, Flatten(b)); err != nil {
		return err
	}
	w.rows += int64(b.Len())
	return nil
}

// Close closes the sink once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	start := time.Now()

	err := w.sink.Close()

	var size uint64
	if s, ok := w.sink.(sizer); ok {
		size = uint64(max(s.BytesWritten(), 0))
	}
	w.opts.MetricsCollector.RecordClose(w.opts.WriterName, time.Since(start), err)
	w.logger.LogClose(context.Background(), w.rows, size, err)
	return err
}
