// Package s3 provides an S3 implementation of blobstore.BlobStore, so array
// store artifacts can be written straight to a bucket.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("predictions/run-42/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	as, err := arraystore.Create(ctx, store)
//
// Chunks are streamed through the multipart upload manager; the manifest is
// written with a single CRC32C-checked PutObject.
package s3
