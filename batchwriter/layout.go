package batchwriter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/veffgo"
)

// ErrHeaderMismatch is returned by sinks with a fixed layout when a batch
// does not produce the columns locked by the first batch.
type ErrHeaderMismatch struct {
	Expected []string
	Actual   []string
}

func (e *ErrHeaderMismatch) Error() string {
	return fmt.Sprintf("batch columns changed: expected [%s], got [%s]",
		strings.Join(e.Expected, ","), strings.Join(e.Actual, ","))
}

func (e *ErrHeaderMismatch) Is(target error) bool { return target == veffgo.ErrSchema }

// HeaderLock captures the column names of the first batch a sink sees and
// rejects later batches with different columns.
type HeaderLock struct {
	columns []string
}

// Check returns the batch columns and whether they were locked by this call.
func (l *HeaderLock) Check(f *Flat) (columns []string, first bool, err error) {
	cols := f.ColumnNames()
	if l.columns == nil {
		l.columns = cols
		return cols, true, nil
	}
	if !slices.Equal(cols, l.columns) {
		return nil, false, &ErrHeaderMismatch{Expected: slices.Clone(l.columns), Actual: cols}
	}
	return cols, false, nil
}

// Columns returns the locked columns, or nil before the first batch.
func (l *HeaderLock) Columns() []string { return slices.Clone(l.columns) }
