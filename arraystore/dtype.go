package arraystore

import (
	"fmt"

	"github.com/x448/float16"
)

// DType is the element type of a leaf.
type DType uint8

const (
	Float64 DType = iota + 1
	Float32
	Float16
	Int64
	Int32
	Uint8
	String
)

var dtypeNames = map[DType]string{
	Float64: "float64",
	Float32: "float32",
	Float16: "float16",
	Int64:   "int64",
	Int32:   "int32",
	Uint8:   "uint8",
	String:  "string",
}

func (d DType) String() string {
	if n, ok := dtypeNames[d]; ok {
		return n
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// Size returns the encoded element size in bytes, or 0 for variable-size
// types.
func (d DType) Size() int {
	switch d {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Float16:
		return 2
	case Uint8:
		return 1
	default:
		return 0
	}
}

// ParseDType returns the DType named s.
func ParseDType(s string) (DType, error) {
	for d, n := range dtypeNames {
		if n == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("arraystore: unknown dtype %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d DType) MarshalText() ([]byte, error) {
	if _, ok := dtypeNames[d]; !ok {
		return nil, fmt.Errorf("arraystore: invalid dtype %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DType) UnmarshalText(b []byte) error {
	v, err := ParseDType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Elem is the set of Go element types a Tensor can hold.
type Elem interface {
	float64 | float32 | float16.Float16 | int64 | int32 | uint8 | string
}

func dtypeOf(data any) (DType, bool) {
	switch data.(type) {
	case []float64:
		return Float64, true
	case []float32:
		return Float32, true
	case []float16.Float16:
		return Float16, true
	case []int64:
		return Int64, true
	case []int32:
		return Int32, true
	case []uint8:
		return Uint8, true
	case []string:
		return String, true
	}
	return 0, false
}
