package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// File represents an open output file.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.Seeker
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// ErrLocked is returned when another process holds the artifact lock.
var ErrLocked = errors.New("artifact is locked by another writer")

// Artifact is an output file held under an exclusive advisory lock until it
// is closed.
type Artifact struct {
	File
	path   string
	unlock func() error
	closed bool
}

// Path returns the artifact path.
func (a *Artifact) Path() string { return a.path }

// Close syncs, unlocks and closes the file. The file is released even if
// syncing fails. Close is idempotent.
func (a *Artifact) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	syncErr := a.File.Sync()
	unlockErr := a.unlock()
	closeErr := a.File.Close()
	return errors.Join(syncErr, unlockErr, closeErr)
}

// CreateArtifact creates (or truncates) path on fsys, creating parent
// directories as needed, and locks it exclusively.
func CreateArtifact(fsys FileSystem, path string) (*Artifact, error) {
	if fsys == nil {
		fsys = Default
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	unlock, err := Lock(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	// Truncate only once the lock is held so a concurrent writer's output is
	// never clobbered.
	if t, ok := f.(interface{ Truncate(int64) error }); ok {
		if err := t.Truncate(0); err != nil {
			_ = unlock()
			_ = f.Close()
			return nil, err
		}
	}
	return &Artifact{File: f, path: path, unlock: unlock}, nil
}
