// Package minio provides a blobstore.BlobStore for MinIO and other
// S3-compatible servers.
//
//	store, err := minio.New(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "predictions",
//	})
package minio
