// Package cubego builder: the fluent API for constructing cubes.
//
// Builders are immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents
// accidental state sharing.
package cubego

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cubego/cache"
	"github.com/hupe1980/cubego/column"
	"github.com/hupe1980/cubego/compress"
	"github.com/hupe1980/cubego/index"
	"github.com/hupe1980/cubego/measure"
)

type columnRole uint8

const (
	roleDimension columnRole = iota
	roleFloatMeasure
	roleIntMeasure
)

type builderColumn struct {
	name   string
	role   columnRole
	length int
	dim    []column.Value // roleDimension
	mf     []float64      // roleFloatMeasure
	mi     []int64        // roleIntMeasure
}

// New creates a cube builder.
//
// Example:
//
//	cube, err := cubego.New().
//	    DimensionStrings("channel", channels).
//	    DimensionStrings("product", products).
//	    Measure("sales", sales).
//	    ZeroOnEmpty().
//	    Build()
func New() Builder {
	return Builder{}
}

// Builder is an immutable fluent builder for creating cubes.
// Each method returns a new builder with the updated configuration.
type Builder struct {
	cols        []builderColumn
	sortedCodes bool
	zeroOnEmpty bool
	resultCache int
	codec       compress.Codec
	logger      *Logger
	metrics     MetricsCollector
}

// addColumn appends a column without sharing the backing array with the
// receiver, so builders derived from a common base stay independent.
func (b Builder) addColumn(col builderColumn) Builder {
	cols := make([]builderColumn, len(b.cols), len(b.cols)+1)
	copy(cols, b.cols)
	b.cols = append(cols, col)
	return b
}

// Dimension adds a categorical column. Null values are treated as missing
// and never assigned a dictionary code.
func (b Builder) Dimension(name string, vals []column.Value) Builder {
	return b.addColumn(builderColumn{name: name, role: roleDimension, length: len(vals), dim: vals})
}

// DimensionStrings adds a string-typed dimension column.
func (b Builder) DimensionStrings(name string, vals []string) Builder {
	return b.Dimension(name, column.Strings(vals))
}

// DimensionInts adds an integer-typed dimension column.
func (b Builder) DimensionInts(name string, vals []int64) Builder {
	return b.Dimension(name, column.Ints(vals))
}

// DimensionBools adds a boolean-typed dimension column. Boolean columns
// take a two-slot construction fast path with identical observable
// behavior.
func (b Builder) DimensionBools(name string, vals []bool) Builder {
	return b.Dimension(name, column.Bools(vals))
}

// Measure adds a float64 measure column. NaN marks missing values.
func (b Builder) Measure(name string, vals []float64) Builder {
	return b.addColumn(builderColumn{name: name, role: roleFloatMeasure, length: len(vals), mf: vals})
}

// MeasureInts adds an int64 measure column. measure.MissingInt64 marks
// missing values.
func (b Builder) MeasureInts(name string, vals []int64) Builder {
	return b.addColumn(builderColumn{name: name, role: roleIntMeasure, length: len(vals), mi: vals})
}

// SortedCodes assigns dictionary codes in sorted value order instead of
// first-seen order, making artifacts comparable across input orderings.
func (b Builder) SortedCodes() Builder {
	b.sortedCodes = true
	return b
}

// ZeroOnEmpty makes empty-selection aggregates return zero instead of
// null. This is the cube-wide no-data policy; it cannot be changed after
// Build.
func (b Builder) ZeroOnEmpty() Builder {
	b.zeroOnEmpty = true
	return b
}

// ResultCache memoizes up to capacity successful point-query results in
// an LRU. The cube is immutable, so cached results never go stale.
func (b Builder) ResultCache(capacity int) Builder {
	b.resultCache = capacity
	return b
}

// Codec sets the compression codec for saved artifacts.
func (b Builder) Codec(c compress.Codec) Builder {
	b.codec = c
	return b
}

// Logger sets the structured logger for operation tracing.
func (b Builder) Logger(l *Logger) Builder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

// Build constructs the cube. Dimensions are indexed in parallel, each
// builder goroutine exclusively owning its output; results are merged
// into the cube only after every dimension completes, so a failed build
// never yields a partial cube.
func (b Builder) Build() (*Cube, error) {
	start := time.Now()

	c := &Cube{
		dims:        make(map[string]*index.Dimension),
		measures:    make(map[string]*measure.Column),
		zeroOnEmpty: b.zeroOnEmpty,
		sortedCodes: b.sortedCodes,
		codec:       b.codec,
		logger:      b.logger,
		metrics:     b.metrics,
	}
	if c.codec == nil {
		c.codec = compress.Default
	}
	if c.logger == nil {
		c.logger = NoopLogger()
	}
	if c.metrics == nil {
		c.metrics = NoopMetricsCollector{}
	}
	if b.resultCache > 0 {
		c.results = cache.NewLRU[cachedResult](b.resultCache)
	}

	err := b.build(c)

	c.metrics.RecordBuild(c.rowCount, time.Since(start), err)
	c.logger.LogBuild(context.Background(), c.rowCount, len(c.dims), len(c.measures), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (b Builder) build(c *Cube) error {
	if len(b.cols) == 0 {
		return nil
	}

	rowCount := b.cols[0].length
	if uint64(rowCount) > math.MaxUint32 {
		return ErrTooManyRows
	}

	seen := make(map[string]struct{}, len(b.cols))
	for _, col := range b.cols {
		if col.name == "" {
			return ErrEmptyName
		}
		if _, dup := seen[col.name]; dup {
			return &ErrDuplicateName{Name: col.name}
		}
		seen[col.name] = struct{}{}
		if col.length != rowCount {
			return &ErrColumnLength{Column: col.name, Got: col.length, Want: rowCount}
		}
	}
	c.rowCount = rowCount

	// Dimension fan-out: dimensions are mutually independent during
	// construction, so each one is indexed on its own goroutine.
	dims := make([]*index.Dimension, len(b.cols))
	g := new(errgroup.Group)
	for i, col := range b.cols {
		if col.role != roleDimension {
			continue
		}
		g.Go(func() error {
			dims[i] = index.Build(col.name, col.dim, index.BuildOptions{SortedCodes: b.sortedCodes})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, col := range b.cols {
		switch col.role {
		case roleDimension:
			c.dims[col.name] = dims[i]
			c.dimOrder = append(c.dimOrder, col.name)
		case roleFloatMeasure:
			c.measures[col.name] = measure.NewFloat64(col.name, col.mf)
			c.measOrder = append(c.measOrder, col.name)
		default:
			c.measures[col.name] = measure.NewInt64(col.name, col.mi)
			c.measOrder = append(c.measOrder, col.name)
		}
	}
	return nil
}

// MustBuild creates the cube, panicking on error.
func (b Builder) MustBuild() *Cube {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
