package arraystore

import (
	"context"

	"github.com/hupe1980/veffgo/blobstore"
)

// SeqKeys are the model input sets a SeqWriter persists.
var SeqKeys = []string{"ref", "alt", "ref_rc", "alt_rc"}

// SeqWriter stores the DNA sequence sets generated for each batch of
// variants. Only the SeqKeys entries of a set are kept; other entries and
// nil values are dropped.
type SeqWriter struct {
	store *Store
}

// NewSeqWriter creates a sequence writer on blobs, removing any artifact
// stored there before.
func NewSeqWriter(ctx context.Context, blobs blobstore.BlobStore, optFns ...Option) (*SeqWriter, error) {
	s, err := Create(ctx, blobs, optFns...)
	if err != nil {
		return nil, err
	}
	return &SeqWriter{store: s}, nil
}

// CreateSeqWriter is NewSeqWriter on a locked local directory.
func CreateSeqWriter(ctx context.Context, dir string, optFns ...Option) (*SeqWriter, error) {
	s, err := CreateLocal(ctx, dir, optFns...)
	if err != nil {
		return nil, err
	}
	return &SeqWriter{store: s}, nil
}

// Write appends one batch of sequence sets.
func (w *SeqWriter) Write(ctx context.Context, sets map[string]any) error {
	reduced := make(Tree, len(SeqKeys))
	for _, k := range SeqKeys {
		if v, ok := sets[k]; ok && v != nil {
			reduced[k] = v
		}
	}
	return w.store.Write(ctx, reduced)
}

// Store returns the underlying array store.
func (w *SeqWriter) Store() *Store { return w.store }

// Close flushes and releases the store.
func (w *SeqWriter) Close() error { return w.store.Close() }
