// Package hash provides the CRC32-Castagnoli (CRC32C) checksums used for
// data integrity: array store chunks carry one over their raw payload, and
// S3 uploads send one so the service can verify the body.
//
// Go's hash/crc32 uses the SSE4.2 and ARM CRC instructions when available.
//
//	checksum := hash.CRC32C(data)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
