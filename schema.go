package veffgo

import (
	"slices"
)

// SchemaRegistry locks the method set and column labels on the first
// non-empty batch and rejects any later drift.
//
// A registry belongs to exactly one writer instance. It is not safe for
// concurrent use.
type SchemaRegistry struct {
	snapshot *SchemaSnapshot
}

// Observe validates predictions against the locked schema, locking it first
// if this is the first non-empty batch. An empty map is a no-op and returns
// (nil, nil).
func (r *SchemaRegistry) Observe(predictions map[string]*PredictionTable) (*SchemaSnapshot, error) {
	if len(predictions) == 0 {
		return nil, nil
	}
	if r.snapshot == nil {
		return r.lock(predictions)
	}

	methods := sortedMethods(predictions)
	if !slices.Equal(methods, r.snapshot.Methods) {
		return nil, &ErrMethodSetChanged{Expected: slices.Clone(r.snapshot.Methods), Actual: methods}
	}
	for _, m := range methods {
		cols := predictions[m].Columns()
		if !slices.Equal(cols, r.snapshot.Columns) {
			return nil, &ErrColumnsChanged{
				Method:   m,
				Expected: slices.Clone(r.snapshot.Columns),
				Actual:   slices.Clone(cols),
			}
		}
	}
	return r.snapshot, nil
}

func (r *SchemaRegistry) lock(predictions map[string]*PredictionTable) (*SchemaSnapshot, error) {
	methods := sortedMethods(predictions)
	first := methods[0]
	columns := predictions[first].Columns()
	for _, m := range methods[1:] {
		if !slices.Equal(predictions[m].Columns(), columns) {
			return nil, &ErrInconsistentColumns{MethodA: first, MethodB: m}
		}
	}
	r.snapshot = &SchemaSnapshot{
		Methods: methods,
		Columns: slices.Clone(columns),
	}
	return r.snapshot, nil
}

// Locked reports whether a schema has been captured.
func (r *SchemaRegistry) Locked() bool { return r.snapshot != nil }

// Snapshot returns the locked schema, if any.
func (r *SchemaRegistry) Snapshot() (*SchemaSnapshot, bool) {
	return r.snapshot, r.snapshot != nil
}
