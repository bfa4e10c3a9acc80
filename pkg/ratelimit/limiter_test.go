package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestIntervalAllow(t *testing.T) {
	lim := NewInterval(60) // one request per second

	if !lim.Allow() {
		t.Fatal("expected first request to be allowed")
	}
	if lim.Allow() {
		t.Error("expected second immediate request to be denied")
	}
}

func TestIntervalWaitSpacing(t *testing.T) {
	lim := NewInterval(600) // one request per 100ms

	ctx := context.Background()
	if err := lim.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := lim.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("second request waited only %v, expected close to 100ms", elapsed)
	}
}

func TestIntervalWaitCancelled(t *testing.T) {
	lim := NewInterval(1) // one request per minute
	lim.Allow()           // consume the initial slot

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := lim.Wait(ctx); err == nil {
		t.Error("expected context error from cancelled wait")
	}
}

func TestIntervalReset(t *testing.T) {
	lim := NewInterval(1)
	lim.Allow()

	if lim.Allow() {
		t.Fatal("expected request to be denied before reset")
	}
	lim.Reset()
	if !lim.Allow() {
		t.Error("expected request to be allowed after reset")
	}
}

func TestNoneNeverBlocks(t *testing.T) {
	var lim Limiter = None{}

	for i := 0; i < 100; i++ {
		if !lim.Allow() {
			t.Fatal("None denied a request")
		}
	}
	if err := lim.Wait(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
