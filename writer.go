package veffgo

import (
	"context"
	"fmt"
)

// Writer persists prediction batches to one output artifact.
//
// Write must be called sequentially, batch after batch; implementations are
// not safe for concurrent use. Close releases the artifact and is idempotent.
// Callers must call Close on every exit path, including after a failed Write.
type Writer interface {
	Write(ctx context.Context, b Batch) error
	Close() error
}

// Group forwards each batch to several independent writers.
//
// Writers see batches in arrival order and in registration order within a
// batch. Records are shared between writers, so a writer that standardises
// identifiers affects the writers registered after it.
type Group struct {
	writers []Writer
	closed  bool
}

// NewGroup returns a Group over writers.
func NewGroup(writers ...Writer) *Group {
	return &Group{writers: writers}
}

// Add appends a writer to the group.
func (g *Group) Add(w Writer) {
	g.writers = append(g.writers, w)
}

// Len returns the number of writers.
func (g *Group) Len() int { return len(g.writers) }

// Write validates b once and forwards it to every writer. The first failing
// writer aborts the fan-out.
func (g *Group) Write(ctx context.Context, b Batch) error {
	if g.closed {
		return ErrClosed
	}
	if err := b.Validate(); err != nil {
		return err
	}
	for i, w := range g.writers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Write(ctx, b); err != nil {
			return fmt.Errorf("writer %d: %w", i, err)
		}
	}
	return nil
}

// Close closes every writer exactly once, concurrently, and joins their
// errors. Writers own disjoint artifacts, so their release order is free.
func (g *Group) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	return closeAll(g.writers)
}
