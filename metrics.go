package curvego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordBuild is called after a corpus build. indexed is the number of
	// entries in the index, skipped the number excluded at build time.
	RecordBuild(indexed, skipped int, duration time.Duration, err error)

	// RecordSearch is called after each search. k is the number of
	// neighbors requested, err is nil if successful.
	RecordSearch(k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	IndexedTotal     atomic.Int64
	SkippedTotal     atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(indexed, skipped int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.IndexedTotal.Add(int64(indexed))
	b.SkippedTotal.Add(int64(skipped))
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// SearchAvgNanos returns the average search latency in nanoseconds.
func (b *BasicMetricsCollector) SearchAvgNanos() int64 {
	n := b.SearchCount.Load()
	if n == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / n
}
