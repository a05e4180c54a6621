package measure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cubego/column"
	"github.com/hupe1980/cubego/index"
)

func selection(positions ...uint32) *index.RowSet {
	s := index.NewRowSet()
	for _, p := range positions {
		s.Add(p)
	}
	return s
}

func mustAggregate(t *testing.T, c *Column, rows *index.RowSet, fn Func, opts Options) column.Value {
	t.Helper()
	v, err := c.Aggregate(rows, fn, opts)
	require.NoError(t, err)
	return v
}

func TestFloat64Aggregates(t *testing.T) {
	nan := math.NaN()
	c := NewFloat64("sales", []float64{100, 150, nan, 300, 250})
	all := selection(0, 1, 2, 3, 4)

	tests := []struct {
		fn   Func
		want column.Value
	}{
		{FuncSum, column.Float(800)},
		{FuncCount, column.Int(5)}, // count ignores missingness
		{FuncMean, column.Float(200)},
		{FuncMin, column.Float(100)},
		{FuncMax, column.Float(300)},
		{FuncMedian, column.Float(200)},
		{FuncVar, column.Float(6250)}, // population variance of 100,150,300,250
		{FuncStd, column.Float(math.Sqrt(6250))},
		{FuncNUnique, column.Int(4)},
	}
	for _, tt := range tests {
		t.Run(tt.fn.String(), func(t *testing.T) {
			got := mustAggregate(t, c, all, tt.fn, Options{})
			assert.Equal(t, tt.want.Kind, got.Kind)
			wantF, _ := tt.want.AsFloat64()
			gotF, _ := got.AsFloat64()
			assert.InDelta(t, wantF, gotF, 1e-9)
		})
	}
}

func TestInt64Aggregates(t *testing.T) {
	c := NewInt64("qty", []int64{4, MissingInt64, 2, 10})
	all := selection(0, 1, 2, 3)

	sum := mustAggregate(t, c, all, FuncSum, Options{})
	assert.Equal(t, column.Int(16), sum) // native integer result

	cnt := mustAggregate(t, c, all, FuncCount, Options{})
	assert.Equal(t, column.Int(4), cnt)

	mn := mustAggregate(t, c, all, FuncMin, Options{})
	assert.Equal(t, column.Int(2), mn)

	mx := mustAggregate(t, c, all, FuncMax, Options{})
	assert.Equal(t, column.Int(10), mx)

	mean := mustAggregate(t, c, all, FuncMean, Options{})
	assert.Equal(t, column.KindFloat, mean.Kind) // mean is always float
	f, _ := mean.AsFloat64()
	assert.InDelta(t, 16.0/3.0, f, 1e-9)

	med := mustAggregate(t, c, all, FuncMedian, Options{})
	f, _ = med.AsFloat64()
	assert.InDelta(t, 4.0, f, 1e-9)

	nu := mustAggregate(t, c, all, FuncNUnique, Options{})
	assert.Equal(t, column.Int(3), nu)
}

func TestIntSumOverflowPromotes(t *testing.T) {
	c := NewInt64("big", []int64{math.MaxInt64, math.MaxInt64})
	got := mustAggregate(t, c, selection(0, 1), FuncSum, Options{})
	assert.Equal(t, column.KindFloat, got.Kind)
	f, _ := got.AsFloat64()
	assert.InDelta(t, 2*float64(math.MaxInt64), f, f*1e-9)
}

func TestEmptySelection(t *testing.T) {
	c := NewFloat64("sales", []float64{1, 2, 3})
	empty := selection()

	// sum and count return zero regardless of policy.
	assert.Equal(t, column.Float(0), mustAggregate(t, c, empty, FuncSum, Options{}))
	assert.Equal(t, column.Int(0), mustAggregate(t, c, empty, FuncCount, Options{}))

	// Null policy (default).
	for _, fn := range []Func{FuncMean, FuncMin, FuncMax, FuncMedian, FuncStd, FuncVar, FuncNUnique} {
		got := mustAggregate(t, c, empty, fn, Options{})
		assert.True(t, got.IsNull(), "%s on empty selection should be null", fn)
	}

	// Zero policy.
	got := mustAggregate(t, c, empty, FuncMean, Options{ZeroOnEmpty: true})
	assert.Equal(t, column.Float(0), got)
	got = mustAggregate(t, c, empty, FuncNUnique, Options{ZeroOnEmpty: true})
	assert.Equal(t, column.Int(0), got)

	ic := NewInt64("qty", []int64{1})
	got = mustAggregate(t, ic, empty, FuncMin, Options{ZeroOnEmpty: true})
	assert.Equal(t, column.Int(0), got) // min keeps the native type
}

func TestAllMissingSelection(t *testing.T) {
	c := NewFloat64("sales", []float64{math.NaN(), math.NaN()})
	rows := selection(0, 1)

	assert.Equal(t, column.Float(0), mustAggregate(t, c, rows, FuncSum, Options{}))
	assert.Equal(t, column.Int(2), mustAggregate(t, c, rows, FuncCount, Options{}))
	assert.True(t, mustAggregate(t, c, rows, FuncMean, Options{}).IsNull())
}

func TestMissingAsZero(t *testing.T) {
	c := NewFloat64("sales", []float64{10, math.NaN(), 20})
	rows := selection(0, 1, 2)
	opts := Options{MissingAsZero: true}

	got := mustAggregate(t, c, rows, FuncSum, opts)
	assert.Equal(t, column.Float(30), got)

	mean := mustAggregate(t, c, rows, FuncMean, opts)
	f, _ := mean.AsFloat64()
	assert.InDelta(t, 10.0, f, 1e-9) // missing row counts as zero

	mn := mustAggregate(t, c, rows, FuncMin, opts)
	assert.Equal(t, column.Float(0), mn)
}

func TestMedianEvenInterpolates(t *testing.T) {
	c := NewFloat64("v", []float64{1, 2, 3, 4})
	got := mustAggregate(t, c, selection(0, 1, 2, 3), FuncMedian, Options{})
	f, _ := got.AsFloat64()
	assert.InDelta(t, 2.5, f, 1e-9)
}

func TestAggregateInvalidFunc(t *testing.T) {
	c := NewFloat64("v", []float64{1})
	_, err := c.Aggregate(selection(0), Func(200), Options{})
	assert.Error(t, err)
}

func TestParseFunc(t *testing.T) {
	for _, fn := range []Func{FuncSum, FuncCount, FuncMean, FuncMin, FuncMax, FuncMedian, FuncStd, FuncVar, FuncNUnique} {
		got, err := ParseFunc(fn.String())
		require.NoError(t, err)
		assert.Equal(t, fn, got)
	}
	_, err := ParseFunc("p99")
	assert.Error(t, err)
}

func TestColumnCopiesInput(t *testing.T) {
	vals := []float64{1, 2}
	c := NewFloat64("v", vals)
	vals[0] = 99

	got := mustAggregate(t, c, selection(0, 1), FuncSum, Options{})
	assert.Equal(t, column.Float(3), got)
}
