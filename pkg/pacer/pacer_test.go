package pacer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNominalDelayWithinJitterBound(t *testing.T) {
	p := New(Config{
		BaseDelay: time.Second,
		Jitter:    500 * time.Millisecond,
	})

	for i := 0; i < 20; i++ {
		d := p.NextDelay()
		if d < time.Second || d > 1500*time.Millisecond {
			t.Fatalf("nominal delay %v outside [1s, 1.5s]", d)
		}
	}
}

func TestBackoffSequence(t *testing.T) {
	// base=1s, jitter=0, max=30s, max_failures=3 from the scenario:
	// four consecutive rate limits yield delays 2s, 4s, 8s, 8s.
	p := New(Config{
		BaseDelay:              time.Second,
		MaxDelay:               30 * time.Second,
		TransientMaxDelay:      30 * time.Second,
		MaxConsecutiveFailures: 3,
	})

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for i, expected := range want {
		p.Record(RateLimited(0))
		if got := p.NextDelay(); got != expected {
			t.Errorf("after failure %d: delay = %v, want %v", i+1, got, expected)
		}
	}

	if !p.ShouldAbort() {
		t.Error("expected abort after 4 consecutive failures with max 3")
	}
	if p.State() != StateAborted {
		t.Errorf("state = %v, want %v", p.State(), StateAborted)
	}
}

func TestBackoffMonotonicAndCapped(t *testing.T) {
	p := New(Config{
		BaseDelay:              time.Second,
		MaxDelay:               8 * time.Second,
		MaxConsecutiveFailures: 10,
	})

	var prev time.Duration
	for i := 0; i < 12; i++ {
		p.Record(RateLimited(0))
		d := p.NextDelay()
		if d < prev {
			t.Fatalf("delay decreased from %v to %v on failure %d", prev, d, i+1)
		}
		if d > 8*time.Second {
			t.Fatalf("delay %v exceeds max 8s", d)
		}
		prev = d
	}
}

func TestSuccessResetsBackoff(t *testing.T) {
	// Scenario: [RateLimited, Success, RateLimited] yields delays [2s, 1s, 2s].
	p := New(Config{
		BaseDelay:              time.Second,
		MaxDelay:               30 * time.Second,
		MaxConsecutiveFailures: 3,
	})

	p.Record(RateLimited(0))
	if got := p.NextDelay(); got != 2*time.Second {
		t.Errorf("after rate limit: delay = %v, want 2s", got)
	}

	p.Record(Success())
	if got := p.NextDelay(); got != time.Second {
		t.Errorf("after success: delay = %v, want 1s", got)
	}
	if p.Failures() != 0 {
		t.Errorf("failures = %d after success, want 0", p.Failures())
	}
	if p.State() != StateNominal {
		t.Errorf("state = %v after success, want %v", p.State(), StateNominal)
	}

	p.Record(RateLimited(0))
	if got := p.NextDelay(); got != 2*time.Second {
		t.Errorf("after second rate limit: delay = %v, want 2s", got)
	}
}

func TestSuccessResetsLongStreak(t *testing.T) {
	p := New(Config{BaseDelay: time.Second, MaxConsecutiveFailures: 10})

	for i := 0; i < 7; i++ {
		p.Record(RateLimited(0))
	}
	p.Record(Success())

	if p.Failures() != 0 {
		t.Errorf("failures = %d after success, want 0", p.Failures())
	}
}

func TestShouldAbortBoundary(t *testing.T) {
	p := New(Config{BaseDelay: time.Second, MaxConsecutiveFailures: 5})

	for i := 1; i <= 5; i++ {
		p.Record(RateLimited(0))
		if p.ShouldAbort() {
			t.Fatalf("aborted at failure count %d, limit is 5", i)
		}
	}

	p.Record(RateLimited(0))
	if !p.ShouldAbort() {
		t.Error("expected abort at failure count 6 with limit 5")
	}
}

func TestTransientUsesLowerCeiling(t *testing.T) {
	p := New(Config{
		BaseDelay:              time.Second,
		MaxDelay:               60 * time.Second,
		TransientMaxDelay:      4 * time.Second,
		MaxConsecutiveFailures: 10,
	})

	cause := errors.New("connection reset")
	for i := 0; i < 6; i++ {
		p.Record(Transient(cause))
	}
	if got := p.NextDelay(); got != 4*time.Second {
		t.Errorf("transient delay = %v, want cap 4s", got)
	}

	// The same streak under rate limiting keeps growing past that cap.
	p.Reset()
	for i := 0; i < 6; i++ {
		p.Record(RateLimited(0))
	}
	if got := p.NextDelay(); got <= 4*time.Second {
		t.Errorf("rate-limit delay = %v, expected above the transient cap", got)
	}
}

func TestRetryAfterHintWins(t *testing.T) {
	p := New(Config{
		BaseDelay:              time.Second,
		MaxDelay:               60 * time.Second,
		MaxConsecutiveFailures: 5,
	})

	// Computed backoff after the first failure is 2s; a larger hint wins.
	p.Record(RateLimited(10 * time.Second))
	if got := p.NextDelay(); got != 10*time.Second {
		t.Errorf("delay = %v, want retry-after hint 10s", got)
	}

	// A smaller hint loses to the computed backoff (now 4s).
	p.Record(RateLimited(time.Second))
	if got := p.NextDelay(); got != 4*time.Second {
		t.Errorf("delay = %v, want computed backoff 4s", got)
	}
}

func TestFatalDoesNotAdjustPacing(t *testing.T) {
	p := New(Config{BaseDelay: time.Second, MaxConsecutiveFailures: 5})

	p.Record(RateLimited(0))
	before := p.NextDelay()
	beforeFailures := p.Failures()

	p.Record(Fatal(errors.New("bad credentials")))

	if got := p.NextDelay(); got != before {
		t.Errorf("delay changed from %v to %v on fatal outcome", before, got)
	}
	if p.Failures() != beforeFailures {
		t.Errorf("failures changed from %d to %d on fatal outcome", beforeFailures, p.Failures())
	}
}

func TestResetClearsAbortedState(t *testing.T) {
	p := New(Config{BaseDelay: time.Second, MaxConsecutiveFailures: 1})

	p.Record(RateLimited(0))
	p.Record(RateLimited(0))
	if p.State() != StateAborted {
		t.Fatalf("state = %v, want aborted", p.State())
	}

	p.Reset()
	if p.State() != StateNominal {
		t.Errorf("state = %v after reset, want nominal", p.State())
	}
	if got := p.NextDelay(); got != time.Second {
		t.Errorf("delay = %v after reset, want base 1s", got)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	p := New(Config{BaseDelay: 10 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := p.Wait(ctx)
	if err == nil {
		t.Fatal("expected context error from cancelled wait")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("wait took %v, expected prompt cancellation", elapsed)
	}
}

func TestWaitZeroDelayReturnsImmediately(t *testing.T) {
	p := New(Config{})

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero-delay wait took %v", elapsed)
	}
}

func TestOutcomeKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindSuccess:     "success",
		KindRateLimited: "rate_limited",
		KindTransient:   "transient",
		KindFatal:       "fatal",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
