// Package fs provides the filesystem seam used by local writers.
//
//   - [FileSystem], [File]: the operations writers need from a filesystem
//   - [LocalFS]: production implementation using the os package
//   - [Artifact]: an output file held under an exclusive lock until Close
//   - [FaultyFS]: test utility injecting write, sync and close failures
//
// Production code uses fs.Default:
//
//	a, err := fs.CreateArtifact(fs.Default, "out/preds.vcf")
//
// Tests inject [FaultyFS] to exercise partial-write paths:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".vcf", fs.Fault{FailAfterBytes: 1024})
//
// The package takes no context.Context: local file operations are not
// interruptible at the syscall level. Remote storage goes through
// blobstore, which does.
package fs
