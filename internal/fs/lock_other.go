//go:build !unix

package fs

// Lock is a no-op on platforms without flock.
func Lock(File) (func() error, error) {
	return func() error { return nil }, nil
}
