package veffgo

import (
	"fmt"
	"slices"
)

// PredictionTable holds the output of one scoring method for one batch:
// a fixed sequence of column labels and one row of values per record.
type PredictionTable struct {
	columns []string
	values  []float64 // row-major, len = rows * len(columns)
	rows    int
}

// NewPredictionTable builds a table from row slices. Every row must have one
// value per column.
func NewPredictionTable(columns []string, rows [][]float64) (*PredictionTable, error) {
	t := &PredictionTable{
		columns: slices.Clone(columns),
		values:  make([]float64, 0, len(rows)*len(columns)),
		rows:    len(rows),
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		t.values = append(t.values, row...)
	}
	return t, nil
}

// MustPredictionTable is like NewPredictionTable but panics on error.
// It is intended for fixtures and tests.
func MustPredictionTable(columns []string, rows [][]float64) *PredictionTable {
	t, err := NewPredictionTable(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column labels. The slice must not be modified.
func (t *PredictionTable) Columns() []string { return t.columns }

// NumRows returns the number of rows.
func (t *PredictionTable) NumRows() int { return t.rows }

// Row returns the values of row i. The slice aliases the table.
func (t *PredictionTable) Row(i int) []float64 {
	w := len(t.columns)
	return t.values[i*w : (i+1)*w]
}

// Column returns a copy of column j.
func (t *PredictionTable) Column(j int) []float64 {
	w := len(t.columns)
	out := make([]float64, t.rows)
	for i := range out {
		out[i] = t.values[i*w+j]
	}
	return out
}
