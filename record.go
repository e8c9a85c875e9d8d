package veffgo

import (
	"strconv"
	"strings"
)

// Record is a mutable handle to one input variant.
//
// Records are owned by the caller. A writer may change the identifier (when
// standardisation is enabled) and the INFO keys it declared itself; every
// other attribute passes through untouched.
type Record interface {
	Chrom() string
	Pos() int64
	ID() string
	SetID(id string)
	Ref() string
	Alt() []string
	Info(key string) (string, bool)
	SetInfo(key, value string)
}

// IDGenerator derives a variant identifier from a record.
type IDGenerator func(Record) string

// DefaultIDGenerator returns a generator producing "chrom:pos:ref:alt" with
// multiple alternative alleles joined by ",".
func DefaultIDGenerator(delim string) IDGenerator {
	return func(r Record) string {
		var sb strings.Builder
		sb.WriteString(r.Chrom())
		sb.WriteString(delim)
		sb.WriteString(strconv.FormatInt(r.Pos(), 10))
		sb.WriteString(delim)
		sb.WriteString(r.Ref())
		sb.WriteString(delim)
		sb.WriteString(strings.Join(r.Alt(), ","))
		return sb.String()
	}
}
