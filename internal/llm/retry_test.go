package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	retryable := []string{
		"googleapi: Error 429: Resource has been exhausted",
		"rpc error: code = Unavailable desc = 503 service unavailable",
		"Post \"https://api\": dial tcp: i/o timeout",
		"internal server error",
		"502 Bad Gateway",
	}
	for _, msg := range retryable {
		assert.True(t, IsRetryable(errors.New(msg)), msg)
	}

	permanent := []string{
		"googleapi: Error 400: Invalid request",
		"API key not valid",
		"no candidates in response",
	}
	for _, msg := range permanent {
		assert.False(t, IsRetryable(errors.New(msg)), msg)
	}

	assert.False(t, IsRetryable(nil))
}

func TestBackoffDelay_GrowsAndCaps(t *testing.T) {
	first := backoffDelay(0)
	assert.GreaterOrEqual(t, first, baseDelay)
	assert.Less(t, first, baseDelay+baseDelay/2)

	// Deep attempts cap at maxDelay plus jitter.
	deep := backoffDelay(20)
	assert.GreaterOrEqual(t, deep, maxDelay)
	assert.LessOrEqual(t, deep, maxDelay+maxDelay/2)
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	out, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_PermanentErrorFailsFast(t *testing.T) {
	calls := 0
	permanent := errors.New("API key not valid")
	_, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "", permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "permanent errors must not burn retry attempts")
}

func TestWithRetry_CancelledContextStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := WithRetry(ctx, func() (string, error) {
		return "", errors.New("429 too many requests")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "cancellation must preempt the backoff wait")
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"fence with trailing prose", "```json\n{\"a\":1}\n``` done", `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.in))
		})
	}
}
