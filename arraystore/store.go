package arraystore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/blobstore"
	"github.com/hupe1980/veffgo/internal/fs"
)

// LockName is the file holding the exclusive lock of a local store.
const LockName = "LOCK"

// Store is an append-only collection of growable datasets ("leaves")
// organised in nested groups.
//
// Every leaf has a fixed dtype and trailing shape and an unbounded leading
// axis. Each Write resizes the touched leaves exactly once and uploads one
// new chunk per leaf; chunks already written are never read or rewritten.
//
// A Store is not safe for concurrent use.
type Store struct {
	blobs    blobstore.BlobStore
	opts     Options
	wopts    veffgo.Options
	logger   *veffgo.Logger
	manifest Manifest
	leaves   map[string]*Leaf
	groups   map[string]struct{}
	release  func() error

	pending int
	rows    int64
	bytes   uint64
	closed  bool
}

// Create starts a new store on blobs. Any artifact previously stored there
// is removed.
func Create(ctx context.Context, blobs blobstore.BlobStore, optFns ...Option) (*Store, error) {
	opts, wopts := applyOptions(optFns)
	now := time.Now().UTC()
	s := &Store{
		blobs:  blobs,
		opts:   opts,
		wopts:  wopts,
		logger: wopts.Logger,
		manifest: Manifest{
			Version:     ManifestVersion,
			ID:          uuid.NewString(),
			CreatedAt:   now,
			UpdatedAt:   now,
			Codec:       opts.Codec.Name(),
			Compression: opts.Compression,
		},
		leaves: make(map[string]*Leaf),
		groups: make(map[string]struct{}),
	}
	if err := s.clear(ctx); err != nil {
		return nil, err
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "array store created",
		"id", s.manifest.ID,
		"compression", opts.Compression.String(),
	)
	return s, nil
}

// CreateLocal creates a store in dir and holds an exclusive lock on it until
// Close.
func CreateLocal(ctx context.Context, dir string, optFns ...Option) (*Store, error) {
	lock, err := fs.CreateArtifact(fs.Default, filepath.Join(dir, LockName))
	if err != nil {
		return nil, veffgo.NewIOError("lock", dir, err)
	}
	s, err := Create(ctx, blobstore.NewLocalStore(dir), optFns...)
	if err != nil {
		return nil, errors.Join(err, lock.Close())
	}
	s.release = lock.Close
	return s, nil
}

func (s *Store) clear(ctx context.Context) error {
	stale, err := s.blobs.List(ctx, chunkPrefix)
	if err != nil {
		return veffgo.NewIOError("list", chunkPrefix, err)
	}
	for _, name := range append(stale, ManifestName) {
		if err := s.blobs.Delete(ctx, name); err != nil {
			return veffgo.NewIOError("delete", name, err)
		}
	}
	if len(stale) > 0 {
		s.logger.InfoContext(ctx, "stale artifact removed", "chunks", len(stale))
	}
	return nil
}

// ID returns the artifact identifier recorded in the manifest.
func (s *Store) ID() string { return s.manifest.ID }

// Rows returns the number of rows written across all writes.
func (s *Store) Rows() int64 { return s.rows }

// Leaf returns the current metadata of the leaf at path.
func (s *Store) Leaf(path string) (Leaf, bool) {
	l, ok := s.leaves[path]
	if !ok {
		return Leaf{}, false
	}
	return *l.clone(), true
}

// Paths returns the sorted leaf paths.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.leaves))
	for p := range s.leaves {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Reader returns a reader over the rows committed so far.
func (s *Store) Reader() *Reader {
	return newReader(s.blobs, s.snapshot())
}

// Write appends every leaf of tree. All leaves must share the same number of
// rows; the whole tree is validated before the first chunk is uploaded.
func (s *Store) Write(ctx context.Context, tree Tree) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	leaves, groups, err := flatten(tree)
	if err != nil {
		return err
	}
	if len(leaves) == 0 && len(groups) == 0 {
		return nil
	}
	return s.write(ctx, leaves, groups)
}

// WriteLeaf appends t to the leaf at path (keys joined with JoinPath).
func (s *Store) WriteLeaf(ctx context.Context, path string, t *Tensor) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return fmt.Errorf("arraystore: invalid leaf path %q", path)
	}
	tensor, err := toTensor(path, t)
	if err != nil {
		return err
	}
	return s.write(ctx, []leafEntry{{path: path, tensor: tensor}}, ancestors(path))
}

func (s *Store) write(ctx context.Context, leaves []leafEntry, groups []string) (err error) {
	start := time.Now()
	rows := 0
	if len(leaves) > 0 {
		rows = leaves[0].tensor.Rows()
	}
	defer func() {
		d := time.Since(start)
		s.wopts.MetricsCollector.RecordWrite(s.wopts.WriterName, rows, d, err)
		s.logger.LogBatch(ctx, rows, len(leaves), d, err)
	}()

	if err := s.validate(leaves, groups); err != nil {
		return err
	}

	// Remember the pre-write state of every touched leaf so a failed upload
	// can restore it.
	type undo struct {
		path string
		prev *Leaf
	}
	var (
		undos     []undo
		uploaded  []string
		newGroups []string
	)
	rollback := func(cause error) error {
		for i := len(undos) - 1; i >= 0; i-- {
			if undos[i].prev == nil {
				delete(s.leaves, undos[i].path)
			} else {
				s.leaves[undos[i].path] = undos[i].prev
			}
		}
		for _, g := range newGroups {
			delete(s.groups, g)
		}
		var errs []error
		for _, name := range uploaded {
			if err := s.blobs.Delete(context.WithoutCancel(ctx), name); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			s.logger.WarnContext(ctx, "rollback left orphan chunks", "error", errors.Join(errs...))
		}
		return cause
	}

	var written uint64
	for _, e := range leaves {
		leaf, ok := s.leaves[e.path]
		if ok {
			undos = append(undos, undo{path: e.path, prev: leaf.clone()})
		} else {
			undos = append(undos, undo{path: e.path})
			leaf = newLeaf(e.path, e.tensor)
			s.leaves[e.path] = leaf
		}
		if e.tensor.Rows() == 0 {
			continue
		}

		name, n, err := s.appendChunk(ctx, leaf, e.tensor)
		if err != nil {
			return rollback(err)
		}
		uploaded = append(uploaded, name)
		written += uint64(n)
	}

	for _, g := range groups {
		if _, ok := s.groups[g]; !ok {
			s.groups[g] = struct{}{}
			newGroups = append(newGroups, g)
		}
	}

	// A due manifest flush is part of the write; a failed flush undoes the
	// batch.
	if s.opts.FlushEvery > 0 && s.pending+1 >= s.opts.FlushEvery {
		if err := s.Flush(ctx); err != nil {
			return rollback(err)
		}
	} else {
		s.pending++
	}
	s.rows += int64(rows)
	s.bytes += written
	return nil
}

// validate checks the whole write against the current layout without
// modifying it.
func (s *Store) validate(leaves []leafEntry, groups []string) error {
	for _, g := range groups {
		if _, ok := s.leaves[g]; ok {
			return &ErrKindConflict{Path: g, Existing: "leaf"}
		}
	}
	for i, e := range leaves {
		if _, ok := s.groups[e.path]; ok {
			return &ErrKindConflict{Path: e.path, Existing: "group"}
		}
		if slices.Contains(groups, e.path) {
			return &ErrKindConflict{Path: e.path, Existing: "group"}
		}
		if i > 0 && e.tensor.Rows() != leaves[0].tensor.Rows() {
			return &ErrLeafRowMismatch{Path: e.path, Expected: leaves[0].tensor.Rows(), Actual: e.tensor.Rows()}
		}
		leaf, ok := s.leaves[e.path]
		if !ok {
			continue
		}
		if leaf.DType != e.tensor.DType() || !slices.Equal(leaf.TrailingShape(), e.tensor.TrailingShape()) {
			return &ErrShapeMismatch{
				Path:      e.path,
				Want:      leaf.DType,
				WantShape: leaf.TrailingShape(),
				Got:       e.tensor.DType(),
				GotShape:  e.tensor.TrailingShape(),
			}
		}
	}
	return nil
}

// appendChunk resizes leaf by t's rows and uploads t as a new chunk.
func (s *Store) appendChunk(ctx context.Context, leaf *Leaf, t *Tensor) (string, int, error) {
	data, err := encodeChunk(t, s.opts.Compression)
	if err != nil {
		return "", 0, err
	}
	name := fmt.Sprintf("%s%s/%08d.chk", chunkPrefix, leaf.Path, len(leaf.Chunks))
	offset := leaf.Rows()
	leaf.Shape[0] += t.Rows()
	if err := s.blobs.Put(ctx, name, data); err != nil {
		return "", 0, veffgo.NewIOError("put chunk", name, err)
	}
	leaf.Chunks = append(leaf.Chunks, ChunkRef{Name: name, Offset: offset, Rows: t.Rows(), Bytes: len(data)})
	return name, len(data), nil
}

func (s *Store) snapshot() *Manifest {
	m := s.manifest
	m.Groups = make([]string, 0, len(s.groups))
	for g := range s.groups {
		m.Groups = append(m.Groups, g)
	}
	slices.Sort(m.Groups)
	m.Leaves = make([]Leaf, 0, len(s.leaves))
	for _, p := range s.Paths() {
		m.Leaves = append(m.Leaves, *s.leaves[p].clone())
	}
	return &m
}

// Flush persists the manifest. Chunks written before a successful Flush
// survive a crash.
func (s *Store) Flush(ctx context.Context) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	m := s.snapshot()
	m.UpdatedAt = time.Now().UTC()
	data, err := s.opts.Codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("arraystore: encode manifest: %w", err)
	}
	if err := s.blobs.Put(ctx, ManifestName, data); err != nil {
		return veffgo.NewIOError("put manifest", ManifestName, err)
	}
	s.manifest.UpdatedAt = m.UpdatedAt
	s.pending = 0
	s.logger.DebugContext(ctx, "manifest flushed",
		"leaves", len(m.Leaves),
		"size", humanize.Bytes(uint64(len(data))),
	)
	return nil
}

// Close flushes the manifest and releases the store. It is idempotent.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	start := time.Now()
	ctx := context.Background()

	err := s.Flush(ctx)
	s.closed = true
	if s.release != nil {
		if rerr := s.release(); rerr != nil {
			err = errors.Join(err, veffgo.NewIOError("unlock", LockName, rerr))
		}
	}

	s.wopts.MetricsCollector.RecordClose(s.wopts.WriterName, time.Since(start), err)
	s.logger.LogClose(ctx, s.rows, s.bytes, err)
	return err
}

// ancestors returns the group paths above path, outermost first.
func ancestors(path string) []string {
	var out []string
	for i := range len(path) {
		if path[i] == '/' {
			out = append(out, path[:i])
		}
	}
	return out
}
