package llm

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Retry policy for annotation calls. Rate-limit and transient server errors
// are retried with exponential backoff and jitter; anything else fails fast.
const (
	MaxRetries        = 10
	baseDelay         = 2 * time.Second
	maxDelay          = 60 * time.Second
	backoffMultiplier = 2
	jitterRange       = 0.2
)

// retryableIndicators are substrings of provider errors worth retrying.
// Provider SDKs flatten HTTP status into the error string, so substring
// matching is the portable check.
var retryableIndicators = []string{
	"429", "500", "502", "503", "504",
	"timeout", "connection error", "server error",
	"resource exhausted", "unavailable",
}

// IsRetryable reports whether err looks like a transient provider failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range retryableIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// backoffDelay returns the pause before retry attempt (0-based), capped at
// maxDelay, with up to jitterRange of proportional random jitter added so
// concurrent workers do not retry in lockstep.
func backoffDelay(attempt int) time.Duration {
	delay := float64(baseDelay) * math.Pow(backoffMultiplier, float64(attempt))
	delay = math.Min(delay, float64(maxDelay))
	jitter := delay * jitterRange * rand.Float64()
	return time.Duration(delay + jitter)
}

// WithRetry invokes fn until it succeeds, returns a non-retryable error, or
// exhausts MaxRetries. Context cancellation aborts the backoff wait.
func WithRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}
	return "", lastErr
}
