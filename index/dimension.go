package index

import (
	"fmt"
	"sort"

	"github.com/hupe1980/cubego/column"
)

// Dimension is the inverted index for one categorical column: a dictionary
// mapping each distinct raw value to a dense code, and a posting RowSet
// per code holding the row positions carrying that value.
//
// Invariants:
//   - codes are dense in [0, Cardinality)
//   - postings of distinct codes are pairwise disjoint
//   - missing (null) source values are never assigned a code; a predicate
//     matching only missing rows matches nothing
//
// A Dimension is immutable once built and safe for concurrent readers.
type Dimension struct {
	name     string
	codes    map[string]uint32 // Value.Key() -> code
	values   []column.Value    // code -> raw value
	postings []*RowSet         // code -> row positions
}

// BuildOptions configures dimension construction.
type BuildOptions struct {
	// SortedCodes assigns codes in ascending Value.Key() order instead of
	// first-seen order. Useful when artifacts built from differently
	// ordered inputs must be byte-comparable.
	SortedCodes bool
}

// Build constructs the dimension index for a column in a single pass.
// The source slice is not retained or mutated. A column with zero rows
// yields an empty index; a single distinct value is valid (cardinality 1).
func Build(name string, vals []column.Value, opts BuildOptions) *Dimension {
	d := &Dimension{
		name:  name,
		codes: make(map[string]uint32),
	}

	if allBool(vals) {
		d.buildBool(vals)
	} else {
		for pos, v := range vals {
			if v.IsNull() {
				continue
			}
			key := v.Key()
			code, ok := d.codes[key]
			if !ok {
				code = uint32(len(d.values))
				d.codes[key] = code
				d.values = append(d.values, v)
				d.postings = append(d.postings, NewRowSet())
			}
			d.postings[code].Add(uint32(pos))
		}
	}

	if opts.SortedCodes {
		d.sortCodes()
	}
	return d
}

// allBool reports whether every non-null value is a boolean, enabling the
// two-slot fast path below.
func allBool(vals []column.Value) bool {
	for _, v := range vals {
		if v.Kind != column.KindBool && v.Kind != column.KindNull {
			return false
		}
	}
	return len(vals) > 0
}

// buildBool indexes a boolean column without dictionary map lookups.
// Codes are still assigned in first-seen order, so behavior is identical
// to the general path.
func (d *Dimension) buildBool(vals []column.Value) {
	slots := [2]int32{-1, -1} // false, true
	for pos, v := range vals {
		if v.IsNull() {
			continue
		}
		slot := 0
		if v.B {
			slot = 1
		}
		code := slots[slot]
		if code < 0 {
			code = int32(len(d.values))
			slots[slot] = code
			d.codes[v.Key()] = uint32(code)
			d.values = append(d.values, v)
			d.postings = append(d.postings, NewRowSet())
		}
		d.postings[code].Add(uint32(pos))
	}
}

// sortCodes reassigns codes in ascending Value.Key() order.
func (d *Dimension) sortCodes() {
	order := make([]uint32, len(d.values))
	for i := range order {
		order[i] = uint32(i)
	}
	sort.Slice(order, func(i, j int) bool {
		return d.values[order[i]].Key() < d.values[order[j]].Key()
	})

	values := make([]column.Value, len(d.values))
	postings := make([]*RowSet, len(d.postings))
	for newCode, oldCode := range order {
		values[newCode] = d.values[oldCode]
		postings[newCode] = d.postings[oldCode]
		d.codes[values[newCode].Key()] = uint32(newCode)
	}
	d.values = values
	d.postings = postings
}

// Restore rebuilds a dimension from persisted parts: values in code order
// and the matching posting sets.
func Restore(name string, values []column.Value, postings []*RowSet) (*Dimension, error) {
	if len(values) != len(postings) {
		return nil, fmt.Errorf("dimension %q: %d values but %d posting sets", name, len(values), len(postings))
	}
	d := &Dimension{
		name:     name,
		codes:    make(map[string]uint32, len(values)),
		values:   values,
		postings: postings,
	}
	for code, v := range values {
		key := v.Key()
		if _, dup := d.codes[key]; dup {
			return nil, fmt.Errorf("dimension %q: duplicate value %s", name, key)
		}
		d.codes[key] = uint32(code)
	}
	return d, nil
}

// Name returns the dimension name.
func (d *Dimension) Name() string { return d.name }

// Cardinality returns the number of distinct non-null values.
func (d *Dimension) Cardinality() int { return len(d.values) }

// Lookup resolves a raw value to its code.
func (d *Dimension) Lookup(v column.Value) (uint32, bool) {
	code, ok := d.codes[v.Key()]
	return code, ok
}

// Value returns the raw value for a code.
func (d *Dimension) Value(code uint32) column.Value { return d.values[code] }

// Postings returns the posting set for a code. The returned set is shared
// and must not be mutated.
func (d *Dimension) Postings(code uint32) *RowSet { return d.postings[code] }

// Union returns the OR of the posting sets of all requested values.
// Values absent from the dictionary contribute nothing: an unknown member
// silently selects zero rows rather than failing the query.
func (d *Dimension) Union(vals []column.Value) *RowSet {
	result := NewRowSet()
	for _, v := range vals {
		if code, ok := d.codes[v.Key()]; ok {
			result.Or(d.postings[code])
		}
	}
	return result
}
