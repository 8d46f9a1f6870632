package curvego

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/curvego/resource"
)

// Defaults for engine configuration. Sequence length, shape points, and
// feature scale are configuration rather than constants so corpora with
// different window lengths can share the same engine code.
const (
	DefaultSequenceLength = 20
	DefaultK              = 3
	DefaultPoolSize       = 50
)

type options struct {
	sequenceLength int
	shapePoints    int
	featureScale   float64
	defaultK       int
	defaultPool    int
	buildWorkers   int
	logger         *Logger
	metrics        MetricsCollector
	controller     *resource.Controller
}

// Option configures the engine constructor.
type Option func(*options)

// WithSequenceLength sets the fixed corpus sequence length L. Records with
// shorter series are excluded at build time; longer series keep their most
// recent L points. Queries of a different length are resampled to L.
func WithSequenceLength(l int) Option {
	return func(o *options) {
		if l >= 2 {
			o.sequenceLength = l
		}
	}
}

// WithShapePoints sets the number of shape samples in a feature vector.
func WithShapePoints(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shapePoints = n
		}
	}
}

// WithFeatureScale sets the multiplier applied to the slope and volatility
// feature components to balance them against the shape samples.
func WithFeatureScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.featureScale = s
		}
	}
}

// WithDefaultK sets the default result count used when a search does not
// specify k.
func WithDefaultK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.defaultK = k
		}
	}
}

// WithDefaultPoolSize sets the default candidate pool size. The pool should
// exceed k by a wide margin: the KD-tree ranks by a lossy feature summary
// while the final ranking is full-resolution DTW, so widening the pool trades
// latency for recall.
func WithDefaultPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultPool = n
		}
	}
}

// WithBuildParallelism bounds the number of goroutines extracting features
// during the build. Defaults to GOMAXPROCS.
func WithBuildParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buildWorkers = n
		}
	}
}

// WithLogger configures structured logging for build and search operations.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithResourceController gates searches behind an admission controller
// (concurrency and/or rate limits).
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		sequenceLength: DefaultSequenceLength,
		shapePoints:    0, // feature package default
		featureScale:   0, // feature package default
		defaultK:       DefaultK,
		defaultPool:    DefaultPoolSize,
		buildWorkers:   runtime.GOMAXPROCS(0),
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
