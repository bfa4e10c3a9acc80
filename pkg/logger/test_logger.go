package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures messages
// instead of writing them anywhere.
type TestLogger struct {
	mu       sync.Mutex
	messages []CapturedMessage
	fields   map[string]interface{}
	zerolog  *zerolog.Logger
}

// CapturedMessage is one log call recorded by a TestLogger
type CapturedMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{
		fields:  make(map[string]interface{}),
		zerolog: &nop,
	}
}

// Messages returns a copy of everything logged so far
func (l *TestLogger) Messages() []CapturedMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CapturedMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether any captured message matches level and text
func (l *TestLogger) HasMessage(level, msg string) bool {
	for _, m := range l.Messages() {
		if m.Level == level && m.Message == msg {
			return true
		}
	}
	return false
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.messages = append(l.messages, CapturedMessage{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}
func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}
func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}
func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// WithField returns a child logger that records into the same TestLogger
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &sharedTestLogger{parent: l, fields: mergeFields(l.fields, map[string]interface{}{key: value})}
}

// WithFields returns a child logger that records into the same TestLogger
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &sharedTestLogger{parent: l, fields: mergeFields(l.fields, fields)}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.zerolog }

// sharedTestLogger routes child logger calls back to the parent recorder
type sharedTestLogger struct {
	parent *TestLogger
	fields map[string]interface{}
}

func mergeFields(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (s *sharedTestLogger) Debug(msg string) { s.parent.log("DEBUG", msg, s.fields) }
func (s *sharedTestLogger) Info(msg string)  { s.parent.log("INFO", msg, s.fields) }
func (s *sharedTestLogger) Warn(msg string)  { s.parent.log("WARN", msg, s.fields) }
func (s *sharedTestLogger) Error(msg string) { s.parent.log("ERROR", msg, s.fields) }
func (s *sharedTestLogger) Fatal(msg string) { s.parent.log("FATAL", msg, s.fields) }

func (s *sharedTestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	s.parent.log("DEBUG", msg, mergeFields(s.fields, fields))
}
func (s *sharedTestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	s.parent.log("INFO", msg, mergeFields(s.fields, fields))
}
func (s *sharedTestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	s.parent.log("WARN", msg, mergeFields(s.fields, fields))
}
func (s *sharedTestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	s.parent.log("ERROR", msg, mergeFields(s.fields, fields))
}

func (s *sharedTestLogger) WithField(key string, value interface{}) Logger {
	return &sharedTestLogger{parent: s.parent, fields: mergeFields(s.fields, map[string]interface{}{key: value})}
}

func (s *sharedTestLogger) WithFields(fields map[string]interface{}) Logger {
	return &sharedTestLogger{parent: s.parent, fields: mergeFields(s.fields, fields)}
}

func (s *sharedTestLogger) WithError(err error) Logger {
	if err == nil {
		return s
	}
	return s.WithField("error", err.Error())
}

func (s *sharedTestLogger) GetZerolog() *zerolog.Logger { return s.parent.zerolog }
