package veffgo

import (
	"strconv"
	"strings"
)

// FloatFormat selects the text rendering of prediction values.
type FloatFormat uint8

const (
	// FormatDefault renders the shortest representation that round-trips
	// (e.g. "0.1", "1e-05").
	FormatDefault FloatFormat = iota
	// FormatFixed8 renders every value with exactly eight decimal digits
	// (e.g. "0.10000000").
	FormatFixed8
)

// ValueDelimiter joins the per-column values of one prediction row.
const ValueDelimiter = "|"

func (f FloatFormat) String() string {
	switch f {
	case FormatDefault:
		return "default"
	case FormatFixed8:
		return "fixed8"
	default:
		return "unknown"
	}
}

// Format renders v.
func (f FloatFormat) Format(v float64) string {
	if f == FormatFixed8 {
		return strconv.FormatFloat(v, 'f', 8, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// JoinRow renders values and joins them with ValueDelimiter.
func (f FloatFormat) JoinRow(values []float64) string {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteString(ValueDelimiter)
		}
		sb.WriteString(f.Format(v))
	}
	return sb.String()
}
