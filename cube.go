package cubego

import (
	"context"
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/hupe1980/cubego/cache"
	"github.com/hupe1980/cubego/column"
	"github.com/hupe1980/cubego/compress"
	"github.com/hupe1980/cubego/index"
	"github.com/hupe1980/cubego/measure"
	"github.com/hupe1980/cubego/persistence"
)

// Predicates maps dimension names to the set of raw values to match.
// Within one dimension the values are ORed; across dimensions the
// selections are ANDed. Iteration order of the map never affects the
// result.
type Predicates map[string][]column.Value

// Cube is an immutable multi-dimensional bitmap index over a table
// snapshot. All bitmaps, dictionaries and measure arrays are exclusively
// owned by the cube; nothing is mutated after Build, which makes
// concurrent queries safe without locking.
type Cube struct {
	rowCount    int
	dimOrder    []string
	dims        map[string]*index.Dimension
	measOrder   []string
	measures    map[string]*measure.Column
	zeroOnEmpty bool
	sortedCodes bool
	codec       compress.Codec
	logger      *Logger
	metrics     MetricsCollector
	results     *cache.LRU[cachedResult] // nil when result caching is off
}

// cachedResult memoizes one successful point query. The cube is immutable,
// so entries never go stale.
type cachedResult struct {
	value   column.Value
	matched uint64
}

// RowCount returns the number of rows indexed at build time.
func (c *Cube) RowCount() int { return c.rowCount }

// Dimensions returns the dimension names in build order.
func (c *Cube) Dimensions() []string {
	out := make([]string, len(c.dimOrder))
	copy(out, c.dimOrder)
	return out
}

// Measures returns the measure names in build order.
func (c *Cube) Measures() []string {
	out := make([]string, len(c.measOrder))
	copy(out, c.measOrder)
	return out
}

// Dimension returns the index for a dimension name.
func (c *Cube) Dimension(name string) (*index.Dimension, bool) {
	d, ok := c.dims[name]
	return d, ok
}

// Evaluate resolves predicates into the set of matching row positions.
//
// Per dimension the posting sets of all requested values are unioned;
// values absent from the dictionary contribute nothing (the silent-miss
// policy). Across dimensions the unions are intersected in ascending
// cardinality order, so work is bounded by the smallest intermediate set,
// with an early exit as soon as the running intersection is empty.
//
// No predicates selects the full [0, rowCount) range. An unknown
// dimension name is a schema error.
func (c *Cube) Evaluate(preds Predicates) (*index.RowSet, error) {
	if len(preds) == 0 {
		return index.FullRowSet(uint32(c.rowCount)), nil
	}

	unions := make([]*index.RowSet, 0, len(preds))
	for name, vals := range preds {
		d, ok := c.dims[name]
		if !ok {
			return nil, &ErrUnknownDimension{Name: name}
		}
		u := d.Union(vals)
		if u.IsEmpty() {
			return index.NewRowSet(), nil
		}
		unions = append(unions, u)
	}

	// Most selective first. Correctness never depends on this order; it
	// only bounds the intersection work.
	sort.Slice(unions, func(i, j int) bool {
		return unions[i].Cardinality() < unions[j].Cardinality()
	})

	result := unions[0]
	for _, u := range unions[1:] {
		result.And(u)
		if result.IsEmpty() {
			break
		}
	}
	return result, nil
}

// Aggregate computes fn over the named measure restricted to the selected
// rows. An unknown measure name is a schema error. rows must have been
// produced by Evaluate on the same cube, so every position is within the
// measure array.
func (c *Cube) Aggregate(measureName string, fn measure.Func, rows *index.RowSet, opts ...QueryOption) (column.Value, error) {
	m, ok := c.measures[measureName]
	if !ok {
		return column.Null(), &ErrUnknownMeasure{Name: measureName}
	}

	var qo queryOptions
	for _, opt := range opts {
		opt(&qo)
	}
	return m.Aggregate(rows, fn, measure.Options{
		MissingAsZero: qo.missingAsZero,
		ZeroOnEmpty:   c.zeroOnEmpty,
	})
}

// Get answers a point query: Evaluate the predicates, then Aggregate the
// named measure over the selection. This is the external boundary
// operation of the engine.
func (c *Cube) Get(measureName string, fn measure.Func, preds Predicates, opts ...QueryOption) (column.Value, error) {
	return c.get(measureName, fn, preds, opts, nil)
}

// get runs one instrumented point query: result cache lookup, metrics and
// query log around the raw evaluate-and-aggregate. rows, when non-nil, is
// a pre-evaluated selection shared across measures by GetAll.
func (c *Cube) get(measureName string, fn measure.Func, preds Predicates, opts []QueryOption, rows *index.RowSet) (column.Value, error) {
	start := time.Now()

	var key string
	if c.results != nil {
		key = queryFingerprint(measureName, fn, preds, opts)
		if hit, ok := c.results.Get(key); ok {
			c.metrics.RecordQuery(hit.matched, time.Since(start), nil)
			c.logger.LogQuery(context.Background(), measureName, fn.String(), hit.matched, time.Since(start), nil)
			return hit.value, nil
		}
	}

	result, matched, err := c.doGet(measureName, fn, preds, opts, rows)
	if err == nil && c.results != nil {
		c.results.Set(key, cachedResult{value: result, matched: matched})
	}

	c.metrics.RecordQuery(matched, time.Since(start), err)
	c.logger.LogQuery(context.Background(), measureName, fn.String(), matched, time.Since(start), err)
	return result, err
}

// queryFingerprint canonicalizes a point query into a cache key. Dimension
// names and their value keys are sorted, so logically equal predicate maps
// share one entry, and every component is length-prefixed, so distinct
// queries can never encode to the same key whatever bytes the values
// contain.
func queryFingerprint(measureName string, fn measure.Func, preds Predicates, opts []QueryOption) string {
	var qo queryOptions
	for _, opt := range opts {
		opt(&qo)
	}

	buf := appendComponent(nil, measureName)
	buf = appendComponent(buf, fn.String())
	if qo.missingAsZero {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	names := make([]string, 0, len(preds))
	for name := range preds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		buf = appendComponent(buf, name)
		keys := make([]string, 0, len(preds[name]))
		for _, v := range preds[name] {
			keys = append(keys, v.Key())
		}
		sort.Strings(keys)
		buf = binary.AppendUvarint(buf, uint64(len(keys)))
		for _, k := range keys {
			buf = appendComponent(buf, k)
		}
	}
	return string(buf)
}

// appendComponent appends s with a uvarint length prefix, keeping the
// encoding prefix-free.
func appendComponent(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func (c *Cube) doGet(measureName string, fn measure.Func, preds Predicates, opts []QueryOption, rows *index.RowSet) (column.Value, uint64, error) {
	// Validate the measure before evaluating, so schema errors surface
	// regardless of predicate contents.
	if _, ok := c.measures[measureName]; !ok {
		return column.Null(), 0, &ErrUnknownMeasure{Name: measureName}
	}
	if rows == nil {
		var err error
		rows, err = c.Evaluate(preds)
		if err != nil {
			return column.Null(), 0, err
		}
	}
	v, err := c.Aggregate(measureName, fn, rows, opts...)
	return v, rows.Cardinality(), err
}

// GetAll computes fn for every measure over one evaluation of the
// predicates, keyed by measure name. Each measure is served through the
// same cache, metrics and logging path as Get.
func (c *Cube) GetAll(fn measure.Func, preds Predicates, opts ...QueryOption) (map[string]column.Value, error) {
	rows, err := c.Evaluate(preds)
	if err != nil {
		return nil, err
	}
	out := make(map[string]column.Value, len(c.measOrder))
	for _, name := range c.measOrder {
		v, err := c.get(name, fn, preds, opts, rows)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// ResultCacheStats returns the hit and miss counts of the result cache.
// ok is false when result caching is disabled.
func (c *Cube) ResultCacheStats() (hits, misses int64, ok bool) {
	if c.results == nil {
		return 0, 0, false
	}
	hits, misses = c.results.Stats()
	return hits, misses, true
}

// Stats summarizes the cube's index structures.
type Stats struct {
	RowCount         int
	DimensionCount   int
	MeasureCount     int
	BitmapCount      int    // Total posting sets across all dimensions
	TotalCardinality uint64 // Sum of posting set cardinalities
	MemoryBytes      uint64 // Estimated bitmap memory usage
}

// Stats returns statistics about the cube's index structures.
func (c *Cube) Stats() Stats {
	stats := Stats{
		RowCount:       c.rowCount,
		DimensionCount: len(c.dims),
		MeasureCount:   len(c.measures),
	}
	for _, d := range c.dims {
		for code := 0; code < d.Cardinality(); code++ {
			rs := d.Postings(uint32(code))
			stats.BitmapCount++
			stats.TotalCardinality += rs.Cardinality()
			stats.MemoryBytes += rs.GetSizeInBytes()
		}
	}
	for _, m := range c.measures {
		stats.MemoryBytes += uint64(m.Len() * 8)
	}
	return stats
}

// Save writes the cube to a single binary artifact at filename, using the
// compression codec configured at build time.
func (c *Cube) Save(filename string) error {
	start := time.Now()
	err := persistence.SaveFile(filename, c.snapshot(), c.codec)
	c.metrics.RecordSave(time.Since(start), err)
	c.logger.LogSave(context.Background(), filename, err)
	return err
}

func (c *Cube) snapshot() *persistence.Snapshot {
	snap := &persistence.Snapshot{
		RowCount:    uint64(c.rowCount),
		ZeroOnEmpty: c.zeroOnEmpty,
		SortedCodes: c.sortedCodes,
	}
	for _, name := range c.dimOrder {
		snap.Dimensions = append(snap.Dimensions, c.dims[name])
	}
	for _, name := range c.measOrder {
		snap.Measures = append(snap.Measures, c.measures[name])
	}
	return snap
}

// Load reads a cube from a binary artifact. Header, shapes and checksum
// are validated before any cube is returned; corrupt artifacts fail with
// persistence.ErrCorruptArtifact.
func Load(filename string, opts ...Option) (*Cube, error) {
	o := applyOptions(opts)

	start := time.Now()
	cube, err := loadFile(filename, o)
	o.metrics.RecordLoad(time.Since(start), err)
	if cube != nil {
		o.logger.LogLoad(context.Background(), filename, cube.rowCount, err)
	} else {
		o.logger.LogLoad(context.Background(), filename, 0, err)
	}
	return cube, err
}

func loadFile(filename string, o *options) (*Cube, error) {
	snap, err := persistence.LoadFile(filename)
	if err != nil {
		return nil, err
	}
	if snap.RowCount > math.MaxUint32 {
		return nil, ErrTooManyRows
	}

	c := &Cube{
		rowCount:    int(snap.RowCount),
		dims:        make(map[string]*index.Dimension, len(snap.Dimensions)),
		measures:    make(map[string]*measure.Column, len(snap.Measures)),
		zeroOnEmpty: snap.ZeroOnEmpty,
		sortedCodes: snap.SortedCodes,
		codec:       o.codec,
		logger:      o.logger,
		metrics:     o.metrics,
	}
	if o.resultCache > 0 {
		c.results = cache.NewLRU[cachedResult](o.resultCache)
	}
	for _, d := range snap.Dimensions {
		if _, dup := c.dims[d.Name()]; dup {
			return nil, &ErrDuplicateName{Name: d.Name()}
		}
		c.dims[d.Name()] = d
		c.dimOrder = append(c.dimOrder, d.Name())
	}
	for _, m := range snap.Measures {
		if _, dup := c.dims[m.Name()]; dup {
			return nil, &ErrDuplicateName{Name: m.Name()}
		}
		if _, dup := c.measures[m.Name()]; dup {
			return nil, &ErrDuplicateName{Name: m.Name()}
		}
		c.measures[m.Name()] = m
		c.measOrder = append(c.measOrder, m.Name())
	}
	return c, nil
}
