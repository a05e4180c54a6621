// Package measure provides the dense numeric columns of a cube and the
// aggregation functions computed over them.
//
// A Column is a flat array positionally aligned 1:1 with the dimension
// posting sets, so aggregation gathers values by direct indexed access and
// never re-filters source data. Missing values are represented by a
// per-type sentinel (NaN for floats, MissingInt64 for integers) and are
// excluded from every function except count, unless the caller requests
// the missing-as-zero mode.
package measure

import (
	"math"
)

// ElemType tags the element type of a measure column.
type ElemType uint8

const (
	// ElemInvalid represents an invalid element type.
	ElemInvalid ElemType = iota
	// ElemFloat64 is a float64 column; NaN marks missing values.
	ElemFloat64
	// ElemInt64 is an int64 column; MissingInt64 marks missing values.
	ElemInt64
)

// String returns the string representation of the ElemType.
func (t ElemType) String() string {
	switch t {
	case ElemFloat64:
		return "float64"
	case ElemInt64:
		return "int64"
	default:
		return "invalid"
	}
}

// MissingInt64 is the sentinel marking a missing value in an int64 column.
const MissingInt64 = math.MinInt64

// Column is one measure: a dense numeric array addressable by row
// position. Immutable once constructed; safe for concurrent readers.
type Column struct {
	name string
	elem ElemType
	f64  []float64
	i64  []int64
}

// NewFloat64 creates a float64 measure column. The input slice is copied,
// so the cube never aliases caller-owned memory.
func NewFloat64(name string, vals []float64) *Column {
	c := &Column{name: name, elem: ElemFloat64, f64: make([]float64, len(vals))}
	copy(c.f64, vals)
	return c
}

// NewInt64 creates an int64 measure column. The input slice is copied.
func NewInt64(name string, vals []int64) *Column {
	c := &Column{name: name, elem: ElemInt64, i64: make([]int64, len(vals))}
	copy(c.i64, vals)
	return c
}

// AdoptFloat64 creates a float64 column taking ownership of vals.
// The caller must not retain the slice. Used by the artifact loader to
// avoid copying freshly decoded arrays.
func AdoptFloat64(name string, vals []float64) *Column {
	return &Column{name: name, elem: ElemFloat64, f64: vals}
}

// AdoptInt64 creates an int64 column taking ownership of vals.
func AdoptInt64(name string, vals []int64) *Column {
	return &Column{name: name, elem: ElemInt64, i64: vals}
}

// Name returns the measure name.
func (c *Column) Name() string { return c.name }

// Elem returns the element type tag.
func (c *Column) Elem() ElemType { return c.elem }

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.elem == ElemInt64 {
		return len(c.i64)
	}
	return len(c.f64)
}

// IsMissing reports whether the value at pos is the missing sentinel.
func (c *Column) IsMissing(pos uint32) bool {
	if c.elem == ElemInt64 {
		return c.i64[pos] == MissingInt64
	}
	return math.IsNaN(c.f64[pos])
}

// Float64s exposes the raw float64 array for serialization.
// The returned slice is shared and must not be mutated.
func (c *Column) Float64s() []float64 { return c.f64 }

// Int64s exposes the raw int64 array for serialization.
// The returned slice is shared and must not be mutated.
func (c *Column) Int64s() []int64 { return c.i64 }
