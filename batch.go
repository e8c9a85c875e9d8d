package veffgo

import (
	"slices"
	"sort"
)

// Batch is the unit of Write: the prediction tables of every method for N
// records, plus optional line identifiers.
type Batch struct {
	// Predictions maps method names to their tables.
	Predictions map[string]*PredictionTable
	// Records are the N variants the predictions belong to, in output order.
	Records []Record
	// LineIDs carries one region/line identifier per record. nil means the
	// dataloader supplied none.
	LineIDs []string
}

// Len returns the number of records.
func (b Batch) Len() int { return len(b.Records) }

// HasLineIDs reports whether line identifiers were supplied.
func (b Batch) HasLineIDs() bool { return b.LineIDs != nil }

// IsEmpty reports whether the batch has neither methods nor records.
func (b Batch) IsEmpty() bool { return len(b.Predictions) == 0 && len(b.Records) == 0 }

// Methods returns the method names in sorted order.
func (b Batch) Methods() []string { return sortedMethods(b.Predictions) }

// Validate runs ValidateBatch on b.
func (b Batch) Validate() error { return ValidateBatch(b.Predictions, b.Records, b.LineIDs) }

// ValidateBatch checks that every prediction table has one row per record and
// that line identifiers, when present, match the record count.
//
// Writers call it before touching any output state, so a failing batch leaves
// the artifact exactly as it was.
func ValidateBatch(predictions map[string]*PredictionTable, records []Record, lineIDs []string) error {
	n := len(records)
	for _, method := range sortedMethods(predictions) {
		tbl := predictions[method]
		if tbl == nil {
			return &ErrNilTable{Method: method}
		}
		if rows := tbl.NumRows(); rows != n {
			return &ErrRowCountMismatch{Method: method, Expected: n, Actual: rows}
		}
	}
	if lineIDs != nil && len(lineIDs) != n {
		return &ErrLineIDCountMismatch{Expected: n, Actual: len(lineIDs)}
	}
	return nil
}

func sortedMethods(predictions map[string]*PredictionTable) []string {
	names := make([]string, 0, len(predictions))
	for k := range predictions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SchemaSnapshot is the method set and column labels locked by the first
// non-empty batch a writer sees.
type SchemaSnapshot struct {
	Methods []string
	Columns []string
}

// HasMethod reports whether name is part of the snapshot.
func (s *SchemaSnapshot) HasMethod(name string) bool {
	_, ok := slices.BinarySearch(s.Methods, name)
	return ok
}
