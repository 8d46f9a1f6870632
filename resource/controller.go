// Package resource provides admission control for search traffic.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds admission limits.
type Config struct {
	// MaxConcurrentSearches is the maximum number of searches in flight.
	// If 0, concurrency is unlimited.
	MaxConcurrentSearches int64

	// SearchesPerSecond caps the sustained query rate.
	// If 0, the rate is unlimited.
	SearchesPerSecond float64

	// Burst is the rate limiter burst size. Defaults to 1 when a rate
	// limit is configured.
	Burst int
}

// Controller gates searches behind a concurrency semaphore and a rate
// limiter. A nil Controller admits everything.
type Controller struct {
	sem      *semaphore.Weighted // nil if unlimited
	limiter  *rate.Limiter       // nil if unlimited
	inFlight atomic.Int64
}

// NewController creates a new admission controller.
func NewController(cfg Config) *Controller {
	c := &Controller{}

	if cfg.MaxConcurrentSearches > 0 {
		c.sem = semaphore.NewWeighted(cfg.MaxConcurrentSearches)
	}

	if cfg.SearchesPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SearchesPerSecond), burst)
	}

	return c
}

// Acquire blocks until the search is admitted or ctx is canceled.
// Every successful Acquire must be paired with a Release.
func (c *Controller) Acquire(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.inFlight.Add(1)
	return nil
}

// Release returns an admission slot.
func (c *Controller) Release() {
	if c == nil {
		return
	}
	if c.sem != nil {
		c.sem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the number of searches currently admitted.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}
