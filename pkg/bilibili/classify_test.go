package bilibili

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"bilifollow/pkg/errors"
	"bilifollow/pkg/pacer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind pacer.Kind
	}{
		{"nil error", nil, pacer.KindSuccess},
		{"rate limit", &errors.Error{Type: errors.ErrorTypeRateLimit}, pacer.KindRateLimited},
		{"network", &errors.Error{Type: errors.ErrorTypeNetwork}, pacer.KindTransient},
		{"server error", &errors.Error{Type: errors.ErrorTypeServerError}, pacer.KindTransient},
		{"auth", &errors.Error{Type: errors.ErrorTypeAuth}, pacer.KindFatal},
		{"not found", &errors.Error{Type: errors.ErrorTypeNotFound}, pacer.KindFatal},
		{"parsing", &errors.Error{Type: errors.ErrorTypeParsing}, pacer.KindFatal},
		{"context canceled", context.Canceled, pacer.KindFatal},
		{"deadline exceeded", context.DeadlineExceeded, pacer.KindFatal},
		{"untyped error", stderrors.New("something odd"), pacer.KindTransient},
		{"wrapped rate limit", fmt.Errorf("call failed: %w", &errors.Error{Type: errors.ErrorTypeRateLimit}), pacer.KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify(%v).Kind = %v, want %v", tt.err, got.Kind, tt.wantKind)
			}
		})
	}
}

func TestClassifyCarriesRetryHint(t *testing.T) {
	err := &errors.Error{Type: errors.ErrorTypeRateLimit, RetryAfter: 9 * time.Second}

	got := Classify(err)
	if got.RetryAfter != 9*time.Second {
		t.Errorf("RetryAfter = %v, want 9s", got.RetryAfter)
	}
}
