package httpretry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	prev := BaseDelay
	BaseDelay = time.Millisecond
	t.Cleanup(func() { BaseDelay = prev })
}

func TestDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, Delay(0))
	assert.Equal(t, 400*time.Millisecond, Delay(1))
	assert.Equal(t, 800*time.Millisecond, Delay(2))
	assert.Equal(t, 5*time.Second, Delay(10))
	assert.Equal(t, 200*time.Millisecond, Delay(-1))
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"rate limited", &StatusError{Provider: "openai", StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &StatusError{Provider: "openai", StatusCode: http.StatusBadGateway}, true},
		{"unauthorised", &StatusError{Provider: "openai", StatusCode: http.StatusUnauthorized}, false},
		{"transport", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Retryable(tt.err))
		})
	}
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	fastBackoff(t)

	calls := 0
	err := Do(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Provider: "ollama", StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnFinalError(t *testing.T) {
	fastBackoff(t)

	calls := 0
	err := Do(context.Background(), 3, func(context.Context) error {
		calls++
		return &StatusError{Provider: "openai", StatusCode: http.StatusUnauthorized, Body: "bad key"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "status 401")
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	fastBackoff(t)

	calls := 0
	err := Do(context.Background(), 2, func(context.Context) error {
		calls++
		return errors.New("reset by peer")
	})

	assert.EqualError(t, err, "reset by peer")
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, 5, func(context.Context) error {
		calls++
		cancel()
		return errors.New("flaky")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
