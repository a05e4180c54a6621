package measure

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/cubego/column"
	"github.com/hupe1980/cubego/index"
)

// Options control how a single aggregation treats missing values and empty
// selections. ZeroOnEmpty comes from cube configuration; MissingAsZero is a
// per-call request.
type Options struct {
	// MissingAsZero treats missing sentinels as the value zero instead of
	// excluding them. count is unaffected.
	MissingAsZero bool
	// ZeroOnEmpty makes mean/min/max/median/std/var/nunique return zero
	// instead of null when no data is selected. sum and count return zero
	// on empty selections regardless.
	ZeroOnEmpty bool
}

// Aggregate computes fn over the column values at the selected row
// positions. Values are gathered by direct indexed access into the dense
// array. The result is null (or zero, per Options) when the function has
// no data to work on.
func (c *Column) Aggregate(rows *index.RowSet, fn Func, opts Options) (column.Value, error) {
	if fn == FuncCount {
		// Selected positions, regardless of measure missingness.
		return column.Int(int64(rows.Cardinality())), nil
	}
	if fn < FuncSum || fn > FuncNUnique {
		return column.Null(), fmt.Errorf("invalid aggregation function %d", fn)
	}
	if c.elem == ElemInt64 {
		return c.aggregateInt64(rows, fn, opts), nil
	}
	return c.aggregateFloat64(rows, fn, opts), nil
}

// noData returns the configured empty-selection result for fn.
func noData(fn Func, elem ElemType, opts Options) column.Value {
	if !opts.ZeroOnEmpty {
		return column.Null()
	}
	switch fn {
	case FuncNUnique:
		return column.Int(0)
	case FuncMin, FuncMax:
		if elem == ElemInt64 {
			return column.Int(0)
		}
		return column.Float(0)
	default:
		return column.Float(0)
	}
}

func (c *Column) aggregateFloat64(rows *index.RowSet, fn Func, opts Options) column.Value {
	switch fn {
	case FuncSum:
		var sum float64
		for pos := range rows.Iterator() {
			v := c.f64[pos]
			if math.IsNaN(v) {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			sum += v
		}
		return column.Float(sum)

	case FuncMean, FuncStd, FuncVar:
		// Welford's algorithm; population variance to match the usual
		// NaN-skipping array semantics.
		var n, mean, m2 float64
		for pos := range rows.Iterator() {
			v := c.f64[pos]
			if math.IsNaN(v) {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			n++
			d := v - mean
			mean += d / n
			m2 += d * (v - mean)
		}
		if n == 0 {
			return noData(fn, c.elem, opts)
		}
		switch fn {
		case FuncMean:
			return column.Float(mean)
		case FuncVar:
			return column.Float(m2 / n)
		default:
			return column.Float(math.Sqrt(m2 / n))
		}

	case FuncMin, FuncMax:
		best := math.NaN()
		for pos := range rows.Iterator() {
			v := c.f64[pos]
			if math.IsNaN(v) {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			if math.IsNaN(best) || (fn == FuncMin && v < best) || (fn == FuncMax && v > best) {
				best = v
			}
		}
		if math.IsNaN(best) {
			return noData(fn, c.elem, opts)
		}
		return column.Float(best)

	case FuncMedian:
		var vals []float64
		for pos := range rows.Iterator() {
			v := c.f64[pos]
			if math.IsNaN(v) {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return noData(fn, c.elem, opts)
		}
		return column.Float(median(vals))

	default: // FuncNUnique
		seen := make(map[uint64]struct{})
		for pos := range rows.Iterator() {
			v := c.f64[pos]
			if math.IsNaN(v) {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			seen[math.Float64bits(v)] = struct{}{}
		}
		if len(seen) == 0 {
			return noData(fn, c.elem, opts)
		}
		return column.Int(int64(len(seen)))
	}
}

func (c *Column) aggregateInt64(rows *index.RowSet, fn Func, opts Options) column.Value {
	switch fn {
	case FuncSum:
		// Integer stays integer unless overflow forces promotion.
		var sum int64
		var fsum float64
		overflow := false
		for pos := range rows.Iterator() {
			v := c.i64[pos]
			if v == MissingInt64 {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			fsum += float64(v)
			if !overflow {
				s, ok := addInt64(sum, v)
				if !ok {
					overflow = true
					continue
				}
				sum = s
			}
		}
		if overflow {
			return column.Float(fsum)
		}
		return column.Int(sum)

	case FuncMin, FuncMax:
		var best int64
		found := false
		for pos := range rows.Iterator() {
			v := c.i64[pos]
			if v == MissingInt64 {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			if !found || (fn == FuncMin && v < best) || (fn == FuncMax && v > best) {
				best = v
				found = true
			}
		}
		if !found {
			return noData(fn, c.elem, opts)
		}
		return column.Int(best)

	case FuncMean, FuncStd, FuncVar:
		var n, mean, m2 float64
		for pos := range rows.Iterator() {
			v := c.i64[pos]
			if v == MissingInt64 {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			n++
			d := float64(v) - mean
			mean += d / n
			m2 += d * (float64(v) - mean)
		}
		if n == 0 {
			return noData(fn, c.elem, opts)
		}
		switch fn {
		case FuncMean:
			return column.Float(mean)
		case FuncVar:
			return column.Float(m2 / n)
		default:
			return column.Float(math.Sqrt(m2 / n))
		}

	case FuncMedian:
		var vals []float64
		for pos := range rows.Iterator() {
			v := c.i64[pos]
			if v == MissingInt64 {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			vals = append(vals, float64(v))
		}
		if len(vals) == 0 {
			return noData(fn, c.elem, opts)
		}
		return column.Float(median(vals))

	default: // FuncNUnique
		seen := make(map[int64]struct{})
		for pos := range rows.Iterator() {
			v := c.i64[pos]
			if v == MissingInt64 {
				if !opts.MissingAsZero {
					continue
				}
				v = 0
			}
			seen[v] = struct{}{}
		}
		if len(seen) == 0 {
			return noData(fn, c.elem, opts)
		}
		return column.Int(int64(len(seen)))
	}
}

// median interpolates between the two middle elements for even lengths.
// Sorts vals in place.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// addInt64 adds two int64 values, reporting overflow.
func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}
