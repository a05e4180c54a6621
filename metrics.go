package cubego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after each cube build.
	// rows is the number of indexed rows, duration the total build time,
	// err is nil if successful.
	RecordBuild(rows int, duration time.Duration, err error)

	// RecordQuery is called after each point query (Evaluate+Aggregate).
	// matched is the number of selected row positions.
	RecordQuery(matched uint64, duration time.Duration, err error)

	// RecordSave is called after each artifact save.
	RecordSave(duration time.Duration, err error)

	// RecordLoad is called after each artifact load.
	RecordLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordQuery(uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(time.Duration, error)          {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	RowsMatched     atomic.Int64
	SaveCount       atomic.Int64
	SaveErrors      atomic.Int64
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(rows int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(matched uint64, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	b.RowsMatched.Add(int64(matched))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// AverageQueryTime returns the mean query duration, or zero before any
// query has been recorded.
func (b *BasicMetricsCollector) AverageQueryTime() time.Duration {
	n := b.QueryCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.QueryTotalNanos.Load() / n)
}
