package cubego

import (
	"github.com/hupe1980/cubego/compress"
)

type options struct {
	codec       compress.Codec
	logger      *Logger
	metrics     MetricsCollector
	resultCache int
}

// Option configures Load behavior.
type Option func(*options)

func applyOptions(opts []Option) *options {
	o := &options{
		codec:   compress.Default,
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCodec configures the compression codec used when the loaded cube is
// saved again. Loading itself always resolves the codec recorded in the
// artifact header.
//
// If nil is passed, compress.Default is used.
func WithCodec(c compress.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = compress.Default
		}
		o.codec = c
	}
}

// WithLogger sets the structured logger for operation tracing.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics collector for monitoring.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithResultCache memoizes up to capacity successful point-query results
// on the loaded cube.
func WithResultCache(capacity int) Option {
	return func(o *options) {
		o.resultCache = capacity
	}
}

type queryOptions struct {
	missingAsZero bool
}

// QueryOption configures a single Get/Aggregate call.
type QueryOption func(*queryOptions)

// WithMissingAsZero treats missing measure values as zero for this call
// instead of excluding them. count is unaffected either way.
func WithMissingAsZero() QueryOption {
	return func(qo *queryOptions) {
		qo.missingAsZero = true
	}
}
