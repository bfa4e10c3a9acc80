package pacer

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// State describes where the pacer is in its backoff lifecycle.
type State int

const (
	// StateNominal means no consecutive failures have been observed.
	StateNominal State = iota
	// StateBackoff means at least one consecutive failure has been observed.
	StateBackoff
	// StateAborted means the failure streak exceeded the configured maximum.
	// It is terminal for the current batch; call Reset to reuse the pacer.
	StateAborted
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateNominal:
		return "nominal"
	case StateBackoff:
		return "backoff"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Config holds the pacing policy. All values are caller-supplied;
// zero values for the caps and the failure limit fall back to defaults.
type Config struct {
	// BaseDelay is the floor delay inserted before every call.
	BaseDelay time.Duration
	// Jitter is the upper bound of the uniform random perturbation added
	// to every delay.
	Jitter time.Duration
	// MaxDelay caps the exponential backoff after rate-limit outcomes.
	MaxDelay time.Duration
	// TransientMaxDelay caps the backoff after transient outcomes. Network
	// blips are less punitive than explicit throttling signals, so this
	// ceiling is lower than MaxDelay.
	TransientMaxDelay time.Duration
	// MaxConsecutiveFailures is the streak length past which ShouldAbort
	// reports true.
	MaxConsecutiveFailures int
}

// DefaultConfig returns the pacing policy used when the caller supplies
// nothing of its own.
func DefaultConfig() Config {
	return Config{
		BaseDelay:              time.Second,
		Jitter:                 500 * time.Millisecond,
		MaxDelay:               60 * time.Second,
		TransientMaxDelay:      15 * time.Second,
		MaxConsecutiveFailures: 5,
	}
}

// Pacer decides how long to wait between outbound calls to a rate-limited
// endpoint family and how to react to failures. It is an explicit instance
// passed to whichever component issues batch calls; it must be confined to
// a single goroutine, so it carries no locking.
type Pacer struct {
	cfg      Config
	failures int
	// pending is the computed backoff delay for the next call. Zero means
	// nominal pacing (base delay plus jitter) applies.
	pending time.Duration
	rng     func() float64
}

// New creates a pacer with the given policy. Unset caps and failure limit
// are filled from DefaultConfig; BaseDelay and Jitter are taken as-is so a
// zero base is a valid "no floor delay" policy.
func New(cfg Config) *Pacer {
	def := DefaultConfig()
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.TransientMaxDelay <= 0 {
		cfg.TransientMaxDelay = def.TransientMaxDelay
	}
	if cfg.TransientMaxDelay > cfg.MaxDelay {
		cfg.TransientMaxDelay = cfg.MaxDelay
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = def.MaxConsecutiveFailures
	}
	return &Pacer{cfg: cfg, rng: rand.Float64}
}

// Wait blocks until the next call is permitted or the context is cancelled.
// The pacer itself never fails; the only possible error is the context's.
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.NextDelay()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextDelay reports the delay that Wait would observe before the next call:
// the pending backoff after failures, or base delay plus jitter otherwise.
func (p *Pacer) NextDelay() time.Duration {
	if p.failures > 0 {
		return p.pending
	}
	return p.cfg.BaseDelay + p.jitter()
}

// Record updates the pacing state after one attempted call.
func (p *Pacer) Record(outcome Outcome) {
	switch outcome.Kind {
	case KindSuccess:
		// A single success fully resets backoff growth.
		p.failures = 0
		p.pending = 0
	case KindRateLimited:
		p.failures++
		d := p.backoff(p.cfg.MaxDelay) + p.jitter()
		if outcome.RetryAfter > d {
			d = outcome.RetryAfter
		}
		p.pending = d
	case KindTransient:
		p.failures++
		p.pending = p.backoff(p.cfg.TransientMaxDelay) + p.jitter()
	case KindFatal:
		// Fatal outcomes are surfaced to the caller untouched; they do
		// not adjust pacing.
	}
}

// ShouldAbort reports whether the consecutive-failure streak has exceeded
// the configured maximum and the caller should stop the batch.
func (p *Pacer) ShouldAbort() bool {
	return p.failures > p.cfg.MaxConsecutiveFailures
}

// State reports the pacer's position in the backoff lifecycle.
func (p *Pacer) State() State {
	switch {
	case p.ShouldAbort():
		return StateAborted
	case p.failures > 0:
		return StateBackoff
	default:
		return StateNominal
	}
}

// Failures reports the current consecutive-failure streak length.
func (p *Pacer) Failures() int {
	return p.failures
}

// Reset clears the failure streak and pending backoff so the pacer can be
// reused for a fresh batch.
func (p *Pacer) Reset() {
	p.failures = 0
	p.pending = 0
}

// backoff computes base·2^n capped at max. The exponent is clamped at the
// failure limit so the delay stops growing once the abort threshold is in
// play.
func (p *Pacer) backoff(max time.Duration) time.Duration {
	exp := p.failures
	if exp > p.cfg.MaxConsecutiveFailures {
		exp = p.cfg.MaxConsecutiveFailures
	}
	d := time.Duration(float64(p.cfg.BaseDelay) * math.Pow(2, float64(exp)))
	if d > max {
		d = max
	}
	return d
}

// jitter returns a uniform random duration in [0, Jitter].
func (p *Pacer) jitter() time.Duration {
	if p.cfg.Jitter <= 0 {
		return 0
	}
	return time.Duration(p.rng() * float64(p.cfg.Jitter))
}
