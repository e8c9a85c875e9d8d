// Package blobstore provides the byte storage behind an array store.
//
// An array store is a set of immutable blobs: one per appended chunk plus a
// manifest that is rewritten on flush. BlobStore is the minimal interface
// that supports this layout on local disks and object stores alike.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local directory, atomic writes via temp file + rename
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
