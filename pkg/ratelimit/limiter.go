package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for the steady-state request gate. It is
// independent of the failure-driven backoff pacer: the gate keeps the
// long-run call rate under a fixed ceiling even when every call succeeds.
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request or the
	// context is cancelled
	Wait(ctx context.Context) error
	// Reset resets the rate limiter state
	Reset()
}

// Interval enforces a minimum spacing between requests, expressed as a
// requests-per-minute ceiling with no burst allowance.
type Interval struct {
	rpm int
	lim *rate.Limiter
}

// NewInterval creates a request gate capped at requestsPerMinute. Values
// below one fall back to 60 per minute.
func NewInterval(requestsPerMinute int) *Interval {
	if requestsPerMinute < 1 {
		requestsPerMinute = 60
	}
	return &Interval{
		rpm: requestsPerMinute,
		lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// Allow reports whether a request may proceed right now.
func (i *Interval) Allow() bool {
	return i.lim.Allow()
}

// Wait blocks until the next request slot opens or ctx is cancelled.
func (i *Interval) Wait(ctx context.Context) error {
	return i.lim.Wait(ctx)
}

// Reset discards accumulated state and restores the full initial allowance.
func (i *Interval) Reset() {
	i.lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(i.rpm)), 1)
}

// None is a gate that never blocks. Used when the steady limit is disabled
// and in tests.
type None struct{}

func (None) Allow() bool                    { return true }
func (None) Wait(ctx context.Context) error { return ctx.Err() }
func (None) Reset()                         {}
