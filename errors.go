package veffgo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructural classifies batch-shape errors (row or identifier count
	// mismatches, missing tables). The offending batch is rejected before anything is written.
	ErrStructural = errors.New("structural error")

	// ErrSchema classifies method-set or column-label drift across batches.
	// It is fatal for the writer instance that observed it.
	ErrSchema = errors.New("schema error")

	// ErrIO classifies failures of the underlying stream or handle.
	ErrIO = errors.New("io error")

	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("writer is closed")

	// ErrWriterFailed is returned by every Write after a schema error poisoned
	// the writer. The original cause is wrapped alongside it.
	ErrWriterFailed = errors.New("writer failed")

	// ErrInvalidModel is returned when a model descriptor carries neither a
	// name nor documentation to derive a tag prefix from.
	ErrInvalidModel = errors.New("invalid model descriptor")
)

// ErrRowCountMismatch indicates a prediction table whose row count differs
// from the number of records in the batch.
type ErrRowCountMismatch struct {
	Method   string
	Expected int
	Actual   int
}

func (e *ErrRowCountMismatch) Error() string {
	return fmt.Sprintf("row count mismatch for method %q: expected %d records, got %d prediction rows",
		e.Method, e.Expected, e.Actual)
}

func (e *ErrRowCountMismatch) Is(target error) bool { return target == ErrStructural }

// ErrNilTable indicates a method mapped to a nil prediction table.
type ErrNilTable struct {
	Method string
}

func (e *ErrNilTable) Error() string {
	return fmt.Sprintf("method %q has no prediction table", e.Method)
}

func (e *ErrNilTable) Is(target error) bool { return target == ErrStructural }

// ErrLineIDCountMismatch indicates a line-identifier list whose length
// differs from the number of records in the batch.
type ErrLineIDCountMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLineIDCountMismatch) Error() string {
	return fmt.Sprintf("line id count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrLineIDCountMismatch) Is(target error) bool { return target == ErrStructural }

// ErrInconsistentColumns indicates two methods of the same batch disagreeing
// on their column labels.
type ErrInconsistentColumns struct {
	MethodA string
	MethodB string
}

func (e *ErrInconsistentColumns) Error() string {
	return fmt.Sprintf("prediction columns are not identical for methods %q and %q", e.MethodA, e.MethodB)
}

func (e *ErrInconsistentColumns) Is(target error) bool { return target == ErrSchema }

// ErrMethodSetChanged indicates a batch whose method names differ from the
// locked schema.
type ErrMethodSetChanged struct {
	Expected []string
	Actual   []string
}

func (e *ErrMethodSetChanged) Error() string {
	return fmt.Sprintf("predictions are not consistent across batches: expected methods [%s], got [%s]",
		strings.Join(e.Expected, ","), strings.Join(e.Actual, ","))
}

func (e *ErrMethodSetChanged) Is(target error) bool { return target == ErrSchema }

// ErrColumnsChanged indicates a method whose column labels differ from the
// locked schema.
type ErrColumnsChanged struct {
	Method   string
	Expected []string
	Actual   []string
}

func (e *ErrColumnsChanged) Error() string {
	return fmt.Sprintf("prediction columns changed for method %q: expected [%s], got [%s]",
		e.Method, strings.Join(e.Expected, ","), strings.Join(e.Actual, ","))
}

func (e *ErrColumnsChanged) Is(target error) bool { return target == ErrSchema }

// IOError wraps a failure of an output handle.
//
// The original underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op    string
	Path  string
	cause error
}

// NewIOError wraps cause as an IOError. It returns nil if cause is nil.
func NewIOError(op, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, cause: cause}
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// Poisoned wraps cause so that it matches both ErrWriterFailed and cause.
func Poisoned(cause error) error {
	return fmt.Errorf("%w: %w", ErrWriterFailed, cause)
}
