package veffgo

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// maxParallelClose bounds the number of artifacts flushed at once.
const maxParallelClose = 4

// closeAll closes every closer, at most maxParallelClose at a time. All
// closers run even if some fail; the returned error joins every failure.
func closeAll[C io.Closer](closers []C) error {
	errs := make([]error, len(closers))
	var g errgroup.Group
	g.SetLimit(maxParallelClose)
	for i, c := range closers {
		g.Go(func() error {
			if err := c.Close(); err != nil {
				errs[i] = fmt.Errorf("close writer %d: %w", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// CloseAll closes every writer and joins their errors.
func CloseAll(writers ...Writer) error {
	return closeAll(writers)
}
