// Package pacing spaces out calls to external providers with a token bucket.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer lets one call through per interval. The first call never waits.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// New creates a Pacer. A zero interval disables pacing.
func New(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{interval: interval, limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Interval returns the configured spacing.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}
