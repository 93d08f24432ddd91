// Package httpretry retries transient provider failures with exponential backoff.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultAttempts is the number of tries including the first.
const DefaultAttempts = 3

// BaseDelay is the first backoff step. Tests may shorten it.
var BaseDelay = 200 * time.Millisecond

// MaxDelay caps a single backoff step.
var MaxDelay = 5 * time.Second

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Retryable reports whether err is a transient failure.
// Context cancellation and client errors (4xx other than 429) are final.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	// Transport errors (connection refused, reset) are retried
	return true
}

// Delay returns the backoff before retry number attempt (0-based).
func Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := BaseDelay << attempt
	if d > MaxDelay || d <= 0 {
		d = MaxDelay
	}
	return d
}

// Do calls fn up to attempts times, sleeping between retryable failures.
func Do(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !Retryable(err) || attempt == attempts-1 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Delay(attempt)):
		}
	}
	return err
}
