package logger

import "time"

// LogRequest logs one outbound API call
func LogRequest(method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		GetLogger().DebugWithFields("API request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		GetLogger().WarnWithFields("API request client error", fields)
	case statusCode >= 500:
		GetLogger().ErrorWithFields("API request server error", fields)
	}
}

// LogRateLimit logs a rate limiting event
func LogRateLimit(endpoint string, retryAfter time.Duration, failures int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":    endpoint,
		"retry_after": retryAfter,
		"failures":    failures,
	}).Warn("Rate limit reached, backing off")
}

// LogBatchProgress logs progress through a batch mutation
func LogBatchProgress(action string, done, total, succeeded, failed int) {
	GetLogger().WithFields(map[string]interface{}{
		"action":    action,
		"done":      done,
		"total":     total,
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("Batch progress")
}
