package api

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for failed HTTP requests.
// The zero value performs no retries.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the
	// initial request.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier is the factor by which the delay grows per attempt.
	Multiplier float64
	// Jitter is the randomization factor (0.0 to 1.0) applied to delays
	// to prevent thundering herd.
	Jitter float64
	// RetryableStatuses lists the HTTP status codes that trigger a retry.
	RetryableStatuses []int
}

// DefaultRetryableStatuses are the status codes retried when a retry
// count is configured without an explicit status list.
var DefaultRetryableStatuses = []int{408, 429, 500, 502, 503, 504}

// NewRetryConfig returns a retry policy with maxRetries attempts and the
// default backoff parameters.
func NewRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:        maxRetries,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		Multiplier:        2.0,
		Jitter:            0.2,
		RetryableStatuses: DefaultRetryableStatuses,
	}
}

// ShouldRetry reports whether a response with the given status code should
// be retried at the given attempt index.
func (r *RetryConfig) ShouldRetry(attempt, statusCode int) bool {
	if r == nil || attempt >= r.MaxRetries {
		return false
	}
	for _, code := range r.RetryableStatuses {
		if code == statusCode {
			return true
		}
	}
	return false
}

// RetryOnNetworkError reports whether a transport-level failure at the
// given attempt index should be retried.
func (r *RetryConfig) RetryOnNetworkError(attempt int) bool {
	return r != nil && attempt < r.MaxRetries
}

// Delay calculates the backoff before the next attempt, with jitter.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}
	if r.Jitter > 0 {
		jitterAmount := delay * r.Jitter
		delay = delay - jitterAmount + rand.Float64()*2*jitterAmount
	}
	return time.Duration(delay)
}

// Wait sleeps for the backoff delay or until the context is done.
func (r *RetryConfig) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
