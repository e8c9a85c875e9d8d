package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/vcf"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Rows generates num rows of width values in [0, 1).
// Uses a single backing array.
func (r *RNG) Rows(num, width int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*width)
	rows := make([][]float64, num)
	for i := range num {
		row := data[i*width : (i+1)*width]
		for j := range row {
			row[j] = r.rand.Float64()
		}
		rows[i] = row
	}
	return rows
}

// Table returns a prediction table with random values for columns.
func (r *RNG) Table(columns []string, rows int) *veffgo.PredictionTable {
	return veffgo.MustPredictionTable(columns, r.Rows(rows, len(columns)))
}

// Table returns a deterministic prediction table seeded by seed.
func Table(columns []string, rows int, seed int64) *veffgo.PredictionTable {
	return NewRNG(seed).Table(columns, rows)
}

var bases = []string{"A", "C", "G", "T"}

// Records returns n single-nucleotide VCF records on chr1, 10bp apart.
func Records(n int) []veffgo.Record {
	out := make([]veffgo.Record, n)
	for i := range out {
		ref := bases[i%4]
		alt := bases[(i+1)%4]
		out[i] = vcf.NewRecord("chr1", int64(10*(i+1)), fmt.Sprintf("rs%d", i+1), ref, alt)
	}
	return out
}

// LineIDs returns n identifiers "r1".."rn".
func LineIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("r%d", i+1)
	}
	return ids
}

// Batch returns an n-record batch with one random table per method, all
// sharing columns, and line ids.
func (r *RNG) Batch(methods, columns []string, n int) veffgo.Batch {
	preds := make(map[string]*veffgo.PredictionTable, len(methods))
	for _, m := range methods {
		preds[m] = r.Table(columns, n)
	}
	return veffgo.Batch{
		Predictions: preds,
		Records:     Records(n),
		LineIDs:     LineIDs(n),
	}
}
