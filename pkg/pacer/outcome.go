package pacer

import "time"

// Kind identifies the variant of a call outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindRateLimited
	KindTransient
	KindFatal
)

// String returns a human-readable name for the outcome kind
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one attempted remote call. It is produced
// at the API client boundary and consumed by the Pacer to decide the next
// delay, keeping the Pacer free of HTTP-specific knowledge.
type Outcome struct {
	Kind Kind
	// RetryAfter is a server-supplied hint for rate-limited outcomes.
	// Zero means no hint was provided.
	RetryAfter time.Duration
	// Err carries the cause for transient and fatal outcomes.
	Err error
}

// Success returns an outcome for a call that completed normally.
func Success() Outcome {
	return Outcome{Kind: KindSuccess}
}

// RateLimited returns an outcome for a call the platform throttled.
// retryAfter may be zero when the server gave no hint.
func RateLimited(retryAfter time.Duration) Outcome {
	return Outcome{Kind: KindRateLimited, RetryAfter: retryAfter}
}

// Transient returns an outcome for a recoverable failure such as a network
// blip or a 5xx response.
func Transient(err error) Outcome {
	return Outcome{Kind: KindTransient, Err: err}
}

// Fatal returns an outcome for an unrecoverable failure such as bad
// credentials. Fatal outcomes never adjust pacing.
func Fatal(err error) Outcome {
	return Outcome{Kind: KindFatal, Err: err}
}
