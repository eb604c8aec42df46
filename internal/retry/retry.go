package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMaxAttempts is the default number of attempts before giving up.
	DefaultMaxAttempts = 3

	// baseDelay is the initial backoff delay.
	baseDelay = 500 * time.Millisecond

	// maxDelay caps the backoff delay.
	maxDelay = 8 * time.Second

	// jitterFraction is the maximum fraction of the delay added as jitter.
	jitterFraction = 0.25
)

// Permanent marks err as not worth retrying. Do returns the underlying
// error immediately when fn fails with a permanent error.
func Permanent(err error) error {
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Do retries fn up to maxAttempts times with exponential backoff and jitter.
// It respects context cancellation and returns the last error if all attempts
// fail. The backoff progression is: 500ms, 1s, 2s (with up to 25% jitter).
// Errors wrapped with Permanent are returned without further attempts.
func Do(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		// Don't sleep after the last attempt.
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}
	}

	return lastErr
}

// backoff calculates the delay for the given attempt (0-indexed) with jitter.
// Progression: 500ms, 1s, 2s, ... capped at maxDelay.
func backoff(attempt int) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt))) * baseDelay
	if delay > maxDelay {
		delay = maxDelay
	}

	jitter := time.Duration(float64(delay) * jitterFraction * rand.Float64())
	return delay + jitter
}
