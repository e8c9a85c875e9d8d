package fs

import (
	"errors"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// GzipSuffix marks output paths that are written gzip-compressed.
const GzipSuffix = ".gz"

// Output is a locked artifact, optionally behind a gzip layer.
type Output struct {
	w       io.Writer
	closers []io.Closer
	written int64
	path    string
}

// CreateOutput creates path as a locked artifact. Paths ending in GzipSuffix
// are gzip-compressed.
func CreateOutput(fsys FileSystem, path string) (*Output, error) {
	a, err := CreateArtifact(fsys, path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, GzipSuffix) {
		return &Output{w: a, closers: []io.Closer{a}, path: path}, nil
	}
	gz := gzip.NewWriter(a)
	return &Output{w: gz, closers: []io.Closer{gz, a}, path: path}, nil
}

// Path returns the artifact path.
func (o *Output) Path() string { return o.path }

// BytesWritten returns the number of bytes written before compression.
func (o *Output) BytesWritten() int64 { return o.written }

func (o *Output) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	o.written += int64(n)
	return n, err
}

// Close closes every layer, the file last, even if one fails.
func (o *Output) Close() error {
	errs := make([]error, 0, len(o.closers))
	for _, c := range o.closers {
		errs = append(errs, c.Close())
	}
	o.closers = nil
	return errors.Join(errs...)
}
