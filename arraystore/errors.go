package arraystore

import (
	"fmt"

	"github.com/hupe1980/veffgo"
)

// ErrShapeMismatch indicates a tensor whose dtype or trailing shape differs
// from the existing leaf at its path.
type ErrShapeMismatch struct {
	Path      string
	Want      DType
	WantShape []int
	Got       DType
	GotShape  []int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("arraystore: leaf %q is %s%v, got %s%v", e.Path, e.Want, e.WantShape, e.Got, e.GotShape)
}

func (e *ErrShapeMismatch) Is(target error) bool { return target == veffgo.ErrStructural }

// ErrKindConflict indicates a key used both as a group and as a leaf.
type ErrKindConflict struct {
	Path     string
	Existing string
}

func (e *ErrKindConflict) Error() string {
	return fmt.Sprintf("arraystore: %q is already a %s", e.Path, e.Existing)
}

func (e *ErrKindConflict) Is(target error) bool { return target == veffgo.ErrSchema }

// ErrLeafRowMismatch indicates leaves of one write disagreeing on their row
// count.
type ErrLeafRowMismatch struct {
	Path     string
	Expected int
	Actual   int
}

func (e *ErrLeafRowMismatch) Error() string {
	return fmt.Sprintf("arraystore: leaf %q has %d rows, other leaves of the batch have %d", e.Path, e.Actual, e.Expected)
}

func (e *ErrLeafRowMismatch) Is(target error) bool { return target == veffgo.ErrStructural }

// ErrUnsupportedValue indicates a tree value that is neither a group nor
// convertible to a tensor.
type ErrUnsupportedValue struct {
	Path string
	Type string
}

func (e *ErrUnsupportedValue) Error() string {
	return fmt.Sprintf("arraystore: unsupported value of type %s at %q", e.Type, e.Path)
}

func (e *ErrUnsupportedValue) Is(target error) bool { return target == veffgo.ErrStructural }
