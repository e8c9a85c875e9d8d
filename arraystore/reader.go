package arraystore

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/veffgo/blobstore"
)

// Reader reads the leaves of a committed store.
type Reader struct {
	blobs    blobstore.BlobStore
	manifest *Manifest
	leaves   map[string]*Leaf
}

// Open loads the manifest of the store on blobs.
func Open(ctx context.Context, blobs blobstore.BlobStore) (*Reader, error) {
	data, err := blobstore.ReadAll(ctx, blobs, ManifestName)
	if err != nil {
		return nil, fmt.Errorf("arraystore: read manifest: %w", err)
	}
	m, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}
	return newReader(blobs, m), nil
}

func newReader(blobs blobstore.BlobStore, m *Manifest) *Reader {
	r := &Reader{
		blobs:    blobs,
		manifest: m,
		leaves:   make(map[string]*Leaf, len(m.Leaves)),
	}
	for i := range m.Leaves {
		r.leaves[m.Leaves[i].Path] = &m.Leaves[i]
	}
	return r
}

// ID returns the artifact identifier.
func (r *Reader) ID() string { return r.manifest.ID }

// Manifest returns the loaded manifest.
func (r *Reader) Manifest() Manifest { return *r.manifest }

// Groups returns the sorted group paths.
func (r *Reader) Groups() []string { return slices.Clone(r.manifest.Groups) }

// Paths returns the sorted leaf paths.
func (r *Reader) Paths() []string {
	paths := make([]string, 0, len(r.manifest.Leaves))
	for _, l := range r.manifest.Leaves {
		paths = append(paths, l.Path)
	}
	return paths
}

// Leaf returns the metadata of the leaf at path.
func (r *Reader) Leaf(path string) (Leaf, bool) {
	l, ok := r.leaves[path]
	if !ok {
		return Leaf{}, false
	}
	return *l.clone(), true
}

// Read returns the full leaf at path as one tensor.
func (r *Reader) Read(ctx context.Context, path string) (*Tensor, error) {
	l, ok := r.leaves[path]
	if !ok {
		return nil, fmt.Errorf("arraystore: leaf %q: %w", path, blobstore.ErrNotFound)
	}
	trailing := l.TrailingShape()
	parts := make([]*Tensor, 0, len(l.Chunks))
	for _, c := range l.Chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := blobstore.ReadAll(ctx, r.blobs, c.Name)
		if err != nil {
			return nil, fmt.Errorf("arraystore: read chunk %s: %w", c.Name, err)
		}
		t, err := decodeChunk(data, trailing)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		if t.DType() != l.DType || t.Rows() != c.Rows {
			return nil, fmt.Errorf("%w: %s holds %d %s rows, manifest says %d %s",
				ErrCorruptChunk, c.Name, t.Rows(), t.DType(), c.Rows, l.DType)
		}
		parts = append(parts, t)
	}
	return concat(l.DType, trailing, parts)
}
