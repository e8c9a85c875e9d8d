package arraystore

import (
	"fmt"
	"slices"

	"github.com/hupe1980/veffgo"
	"github.com/x448/float16"
)

// Tensor is a dense, row-major n-dimensional array. The leading axis is the
// row axis along which leaves grow.
type Tensor struct {
	dtype DType
	shape []int
	data  any
}

// FromSlice wraps data with the given shape. Without a shape the tensor is
// one-dimensional. The product of shape must equal len(data).
func FromSlice[T Elem](data []T, shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("arraystore: negative dimension in shape %v", shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("arraystore: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	dt, _ := dtypeOf(any(data))
	return &Tensor{dtype: dt, shape: slices.Clone(shape), data: data}, nil
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[T Elem](data []T, shape ...int) *Tensor {
	t, err := FromSlice(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromTable returns the table as a float64 tensor of shape [rows, columns].
func FromTable(tbl *veffgo.PredictionTable) *Tensor {
	rows, cols := tbl.NumRows(), len(tbl.Columns())
	data := make([]float64, 0, rows*cols)
	for i := range rows {
		data = append(data, tbl.Row(i)...)
	}
	return &Tensor{dtype: Float64, shape: []int{rows, cols}, data: data}
}

// Float16FromFloat32 converts values to half precision.
func Float16FromFloat32(values []float32, shape ...int) (*Tensor, error) {
	data := make([]float16.Float16, len(values))
	for i, v := range values {
		data[i] = float16.Fromfloat32(v)
	}
	return FromSlice(data, shape...)
}

// DType returns the element type.
func (t *Tensor) DType() DType { return t.dtype }

// Shape returns a copy of the shape.
func (t *Tensor) Shape() []int { return slices.Clone(t.shape) }

// Rows returns the length of the leading axis.
func (t *Tensor) Rows() int {
	if len(t.shape) == 0 {
		return 0
	}
	return t.shape[0]
}

// TrailingShape returns the shape without the leading axis.
func (t *Tensor) TrailingShape() []int {
	if len(t.shape) == 0 {
		return nil
	}
	return slices.Clone(t.shape[1:])
}

// RowSize returns the number of elements per row.
func (t *Tensor) RowSize() int {
	n := 1
	for _, d := range t.shape[1:] {
		n *= d
	}
	return n
}

// Len returns the total number of elements.
func (t *Tensor) Len() int { return t.Rows() * t.RowSize() }

// Data returns the backing slice ([]float64, []string, ...).
func (t *Tensor) Data() any { return t.data }

// Values returns the backing slice of t if its element type is T.
func Values[T Elem](t *Tensor) ([]T, bool) {
	v, ok := t.data.([]T)
	return v, ok
}

// concat joins tensors of identical dtype and trailing shape along the
// leading axis.
func concat(dtype DType, trailing []int, parts []*Tensor) (*Tensor, error) {
	rows := 0
	for _, p := range parts {
		rows += p.Rows()
	}
	shape := append([]int{rows}, trailing...)
	switch dtype {
	case Float64:
		return concatTyped[float64](shape, parts)
	case Float32:
		return concatTyped[float32](shape, parts)
	case Float16:
		return concatTyped[float16.Float16](shape, parts)
	case Int64:
		return concatTyped[int64](shape, parts)
	case Int32:
		return concatTyped[int32](shape, parts)
	case Uint8:
		return concatTyped[uint8](shape, parts)
	case String:
		return concatTyped[string](shape, parts)
	}
	return nil, fmt.Errorf("arraystore: unsupported dtype %s", dtype)
}

func concatTyped[T Elem](shape []int, parts []*Tensor) (*Tensor, error) {
	var out []T
	for _, p := range parts {
		v, ok := Values[T](p)
		if !ok {
			return nil, fmt.Errorf("arraystore: chunk dtype %s does not match leaf", p.dtype)
		}
		out = append(out, v...)
	}
	if out == nil {
		out = []T{}
	}
	return FromSlice(out, shape...)
}
