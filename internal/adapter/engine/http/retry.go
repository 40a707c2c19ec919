package http

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryConfig bounds the retry loop for engine HTTP calls.
type RetryConfig struct {
	// MaxRetries is the number of re-attempts after the initial call.
	// Zero disables retrying.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig returns the retry behaviour used when nothing is
// configured: up to five retries, 2s doubling to a 32s ceiling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     32 * time.Second,
		Multiplier:     2.0,
	}
}

// RetryConfigFromSettings merges configured values onto the defaults.
// Durations arrive as strings straight from configuration; empty or
// unparseable values keep the default, as do a negative maxRetries and
// a non-positive multiplier. maxRetries of zero is honored and disables
// retrying.
func RetryConfigFromSettings(maxRetries int, initialBackoff, maxBackoff string, multiplier float64) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxRetries >= 0 {
		cfg.MaxRetries = maxRetries
	}
	if d, err := time.ParseDuration(initialBackoff); err == nil && d > 0 {
		cfg.InitialBackoff = d
	}
	if d, err := time.ParseDuration(maxBackoff); err == nil && d > 0 {
		cfg.MaxBackoff = d
	}
	if multiplier > 0 {
		cfg.Multiplier = multiplier
	}
	return cfg
}

// ExponentialBackoff returns the wait before retry number attempt
// (zero-based): InitialBackoff * Multiplier^attempt, capped at
// MaxBackoff, then jittered by up to a quarter of the capped value in
// either direction so concurrent clients do not retry in lockstep.
func ExponentialBackoff(attempt int, config RetryConfig) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.Multiplier, float64(attempt))
	ceiling := float64(config.MaxBackoff)
	if base > ceiling {
		base = ceiling
	}

	jitter := (rand.Float64() - 0.5) * 0.5 * base
	wait := base + jitter

	switch {
	case wait > ceiling:
		wait = ceiling
	case wait < 0:
		wait = 0
	}
	return time.Duration(wait)
}

// ShouldRetry reports whether the error is a transient engine error.
// Only typed engine errors marked retryable qualify; anything else,
// including plain errors, fails immediately.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}
	return false
}

// Operation is one attempt of a retryable call.
type Operation func(ctx context.Context) error

// RetryWithBackoff runs the operation until it succeeds, fails with a
// non-retryable error, the retry budget is spent, or the context ends.
// The backoff sleep is interruptible by context cancellation.
func RetryWithBackoff(ctx context.Context, operation Operation, config RetryConfig) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
		if !ShouldRetry(lastErr) || attempt == config.MaxRetries {
			return lastErr
		}

		select {
		case <-time.After(ExponentialBackoff(attempt, config)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
