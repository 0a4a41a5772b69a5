// Package retry provides retry policies with exponential backoff for
// generation stage execution.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Policy defines retry behavior for a stage invocation.
type Policy struct {
	// MaxAttempts is the total number of attempts, the first call included.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Multiplier is the backoff growth factor between retries.
	Multiplier float64
}

// DefaultPolicy returns the drafting retry policy: three total attempts,
// 2s base doubling, capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// CalculateDelay returns the backoff delay before the given retry.
// retryNumber is 1-based: the delay before retry n is
// InitialDelay * Multiplier^(n-1), capped at MaxDelay.
func (p Policy) CalculateDelay(retryNumber int) time.Duration {
	if retryNumber <= 0 {
		return 0
	}
	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(retryNumber-1))
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// OnRetry is invoked after a failed attempt and before the backoff sleep.
// attempt is the 1-based attempt that just failed.
type OnRetry func(ctx context.Context, attempt int, err error)

// ExecuteWithResult runs fn under the policy and returns its result.
// The context deadline is checked before every attempt, the first included,
// so an already-expired budget produces zero calls to fn, and again after a
// successful attempt, so a result that lands past the deadline is discarded.
// Non-retryable errors (per isRetryable, when provided) abort immediately.
func ExecuteWithResult[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error), isRetryable func(error) bool, onRetry OnRetry) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, fmt.Errorf("deadline exceeded after %d attempts: %w", attempt-1, lastErr)
			}
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, fmt.Errorf("deadline exceeded on attempt %d, result discarded: %w", attempt, ctxErr)
			}
			return result, nil
		}
		lastErr = err

		if isRetryable != nil && !isRetryable(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		if onRetry != nil {
			onRetry(ctx, attempt, err)
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("deadline exceeded after %d attempts: %w", attempt, lastErr)
		case <-time.After(p.CalculateDelay(attempt)):
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}
