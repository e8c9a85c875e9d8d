// Package arraystore implements a growable, multi-dataset array store on top
// of a blobstore.BlobStore.
//
// A store holds named leaves organised in groups. Each leaf is an
// n-dimensional array whose leading axis is unbounded: every Write appends
// one chunk per touched leaf and never rewrites earlier chunks, so the cost
// of a write is proportional to the batch, not to the artifact.
//
// # Layout
//
//	manifest.json                    leaves, shapes, dtypes and chunk lists
//	chunks/<leaf path>/00000000.chk  one self-describing chunk per write
//
// Keys containing "/" or "%" are escaped (see JoinPath). Chunks carry a
// CRC32-C of their payload and are compressed with zstd (default) or lz4
// when that saves at least 10%.
//
// # Usage
//
//	s, err := arraystore.CreateLocal(ctx, "preds.store")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = s.Write(ctx, arraystore.Tree{
//	    "preds": arraystore.Tree{"DeepSEA": arraystore.FromTable(table)},
//	    "line_idx": lineIDs,
//	})
//
// By default the manifest is persisted with every write, so a crash keeps
// every batch whose Write returned nil readable with Open. Each flush uploads
// the whole manifest; WithFlushEvery(n) flushes every n writes instead, and
// a crash then loses the rows written since the last flush. A write that
// triggers a flush fails as a whole if the flush fails.
package arraystore
