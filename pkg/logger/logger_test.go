package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"bilifollow/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, tc := range cases {
		got, err := parseLogLevel(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseLogLevel(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLogLevel(%q): unexpected error %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "bogus"})
	if err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child := log.WithField("endpoint", "/x/relation/modify")
	if child == log {
		t.Error("WithField returned the same logger instance")
	}

	parent := log.(*zerologLogger)
	if len(parent.fields) != 0 {
		t.Errorf("parent logger gained %d fields", len(parent.fields))
	}
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("starting batch")
	tl.WithField("mid", int64(42)).Warn("target failed")
	tl.ErrorWithFields("giving up", map[string]interface{}{"failures": 6})

	msgs := tl.Messages()
	if len(msgs) != 3 {
		t.Fatalf("captured %d messages, want 3", len(msgs))
	}
	if !tl.HasMessage("INFO", "starting batch") {
		t.Error("missing info message")
	}
	if !tl.HasMessage("WARN", "target failed") {
		t.Error("missing warn message")
	}
	if msgs[1].Fields["mid"] != int64(42) {
		t.Errorf("warn fields = %v, want mid=42", msgs[1].Fields)
	}
	if msgs[2].Fields["failures"] != 6 {
		t.Errorf("error fields = %v, want failures=6", msgs[2].Fields)
	}
}
