package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/cubego"
	"github.com/hupe1980/cubego/column"
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

// DimensionSpec describes one categorical column of a generated table.
type DimensionSpec struct {
	Name        string
	Cardinality int
	// MissingRate is the fraction of rows left without a value.
	MissingRate float64
}

// Categorical returns a spec for a dimension with the given number of
// distinct members.
func Categorical(name string, cardinality int) DimensionSpec {
	return DimensionSpec{Name: name, Cardinality: cardinality}
}

// Table is a raw columnar test fixture: categorical columns as strings
// (empty string marks a missing value) and float measures (NaN marks a
// missing value).
type Table struct {
	Rows       int
	DimOrder   []string
	Dimensions map[string][]string
	MeasOrder  []string
	Measures   map[string][]float64
}

// GenerateTable builds a table of rows random rows over the given
// dimensions. Member names are deterministic given the RNG seed.
func GenerateTable(rng *RNG, rows int, specs ...DimensionSpec) *Table {
	t := &Table{
		Rows:       rows,
		Dimensions: make(map[string][]string, len(specs)),
		Measures:   make(map[string][]float64),
	}
	for _, spec := range specs {
		members := make([]string, spec.Cardinality)
		for i := range members {
			members[i] = fmt.Sprintf("%s-%d", spec.Name, i)
		}
		col := make([]string, rows)
		for i := range col {
			if spec.MissingRate > 0 && rng.Float64() < spec.MissingRate {
				continue
			}
			col[i] = members[rng.Intn(len(members))]
		}
		t.DimOrder = append(t.DimOrder, spec.Name)
		t.Dimensions[spec.Name] = col
	}
	return t
}

// AddMeasure appends a float measure with uniform values in [0,100) and
// the given fraction of missing rows.
func (t *Table) AddMeasure(rng *RNG, name string, missingRate float64) {
	col := make([]float64, t.Rows)
	for i := range col {
		if missingRate > 0 && rng.Float64() < missingRate {
			col[i] = math.NaN()
			continue
		}
		col[i] = rng.Float64() * 100
	}
	t.MeasOrder = append(t.MeasOrder, name)
	t.Measures[name] = col
}

// Builder converts the table into a cube builder: empty dimension cells
// become null values, measure columns are added as float measures.
func (t *Table) Builder() cubego.Builder {
	b := cubego.New()
	for _, name := range t.DimOrder {
		raw := t.Dimensions[name]
		vals := make([]column.Value, len(raw))
		for i, s := range raw {
			if s == "" {
				vals[i] = column.Null()
				continue
			}
			vals[i] = column.String(s)
		}
		b = b.Dimension(name, vals)
	}
	for _, name := range t.MeasOrder {
		b = b.Measure(name, t.Measures[name])
	}
	return b
}

// Predicates converts string predicates into cube predicates.
func Predicates(preds map[string][]string) cubego.Predicates {
	out := make(cubego.Predicates, len(preds))
	for dim, members := range preds {
		out[dim] = column.Strings(members)
	}
	return out
}

// Member returns the deterministic member name for a dimension code.
func Member(dim string, code int) string {
	return fmt.Sprintf("%s-%d", dim, code)
}

// Match reports whether a row satisfies the predicates: within one
// dimension any listed member matches, across dimensions all must match.
// Missing rows never match.
func (t *Table) Match(row int, preds map[string][]string) bool {
	for dim, members := range preds {
		col := t.Dimensions[dim]
		got := col[row]
		if got == "" {
			return false
		}
		hit := false
		for _, m := range members {
			if got == m {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// ScanCount counts matching rows by full scan.
func (t *Table) ScanCount(preds map[string][]string) int {
	n := 0
	for row := 0; row < t.Rows; row++ {
		if t.Match(row, preds) {
			n++
		}
	}
	return n
}

// ScanSum computes the missing-skipping sum of a measure over matching
// rows by full scan.
func (t *Table) ScanSum(name string, preds map[string][]string) float64 {
	col := t.Measures[name]
	var sum float64
	for row := 0; row < t.Rows; row++ {
		if !t.Match(row, preds) {
			continue
		}
		if math.IsNaN(col[row]) {
			continue
		}
		sum += col[row]
	}
	return sum
}

// ScanMin returns the missing-skipping minimum of a measure over matching
// rows, and false when no non-missing value is selected.
func (t *Table) ScanMin(name string, preds map[string][]string) (float64, bool) {
	col := t.Measures[name]
	best := math.NaN()
	for row := 0; row < t.Rows; row++ {
		if !t.Match(row, preds) || math.IsNaN(col[row]) {
			continue
		}
		if math.IsNaN(best) || col[row] < best {
			best = col[row]
		}
	}
	if math.IsNaN(best) {
		return 0, false
	}
	return best, true
}
