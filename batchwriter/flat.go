package batchwriter

import (
	"strings"

	"github.com/hupe1980/veffgo"
)

// Fixed column names of a flat batch.
const (
	ColChrom   = "chr"
	ColPos     = "pos"
	ColID      = "id"
	ColRef     = "ref"
	ColAlt     = "alt"
	ColLineIdx = "line_idx"

	predsPrefix = "preds"
)

// MethodPreds holds the predictions of one method in column-major order:
// Values[j][i] is column j of record i.
type MethodPreds struct {
	Method  string      `json:"method"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Flat is a column-oriented batch. All slices have one entry per record.
type Flat struct {
	Chrom []string `json:"chr"`
	Pos   []int64  `json:"pos"`
	ID    []string `json:"id"`
	Ref   []string `json:"ref"`
	// Alt holds the alternative alleles of each record joined by ",".
	Alt []string `json:"alt"`
	// LineIdx is nil when the batch carried no line ids.
	LineIdx []string `json:"line_idx,omitempty"`
	// Preds is sorted by method name.
	Preds []MethodPreds `json:"preds"`
}

// Len returns the number of records.
func (f *Flat) Len() int { return len(f.Chrom) }

// HasLineIdx reports whether the batch carried line identifiers.
func (f *Flat) HasLineIdx() bool { return f.LineIdx != nil }

// PredColumn returns the flat name of a prediction column.
func PredColumn(method, column string) string {
	return predsPrefix + "/" + method + "/" + column
}

// ColumnNames returns the flat column names in a stable order: the fixed
// variant columns, line_idx when present, then one
// "preds/<method>/<column>" per prediction column.
func (f *Flat) ColumnNames() []string {
	names := []string{ColChrom, ColPos, ColID, ColRef, ColAlt}
	if f.HasLineIdx() {
		names = append(names, ColLineIdx)
	}
	for _, p := range f.Preds {
		for _, c := range p.Columns {
			names = append(names, PredColumn(p.Method, c))
		}
	}
	return names
}

// Flatten converts b into a flat batch. b must have passed
// veffgo.ValidateBatch.
func Flatten(b veffgo.Batch) *Flat {
	n := b.Len()
	f := &Flat{
		Chrom: make([]string, n),
		Pos:   make([]int64, n),
		ID:    make([]string, n),
		Ref:   make([]string, n),
		Alt:   make([]string, n),
	}
	for i, r := range b.Records {
		f.Chrom[i] = r.Chrom()
		f.Pos[i] = r.Pos()
		f.ID[i] = r.ID()
		f.Ref[i] = r.Ref()
		f.Alt[i] = strings.Join(r.Alt(), ",")
	}
	if b.HasLineIDs() {
		f.LineIdx = make([]string, n)
		copy(f.LineIdx, b.LineIDs)
	}
	for _, m := range b.Methods() {
		tbl := b.Predictions[m]
		cols := tbl.Columns()
		values := make([][]float64, len(cols))
		for j := range cols {
			values[j] = tbl.Column(j)
		}
		f.Preds = append(f.Preds, MethodPreds{
			Method:  m,
			Columns: append([]string(nil), cols...),
			Values:  values,
		})
	}
	return f
}
