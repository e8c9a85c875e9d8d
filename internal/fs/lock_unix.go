//go:build unix

package fs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Lock takes an exclusive, non-blocking advisory lock on f. Files without a
// descriptor are not locked. The returned func releases the lock.
func Lock(f File) (func() error, error) {
	fd, ok := f.(interface{ Fd() uintptr })
	if !ok {
		return func() error { return nil }, nil
	}
	h := int(fd.Fd())
	if err := unix.Flock(h, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, err
	}
	return func() error { return unix.Flock(h, unix.LOCK_UN) }, nil
}
