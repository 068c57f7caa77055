// Package control holds retry and failure-isolation policy for the bot's
// delivery and polling loops.
package control

import "time"

// Policy defines retry behavior for outbound message delivery.
type Policy struct {
	MaxAttempts int
}

// DefaultPolicy returns the default delivery policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
	}
}

// RetryBackoff computes exponential backoff with a fixed cap.
func RetryBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	seconds := 1 << (attempt - 1)
	if seconds > 30 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// ShouldRetry returns whether a failed delivery attempt should be retried.
func ShouldRetry(p Policy, attempts int) bool {
	return attempts < p.MaxAttempts
}
