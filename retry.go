package main

import (
	"context"
	"fmt"
	"time"
)

// withRetry invokes op until it succeeds or attempts is exhausted, sleeping
// delay between attempts. onFailure (optional) is called after every failed
// attempt with the 1-based attempt number; use it for logging or telemetry.
// Each attempt is independent: op must not leave partial state behind.
//
// Returns the operation's value on success, or the last error once attempts
// is exhausted or the context is canceled.
func withRetry(ctx context.Context, attempts int, delay time.Duration, op func() (string, error), onFailure func(attempt int, err error)) (string, error) {
	if attempts < 1 {
		return "", fmt.Errorf("retry attempts must be positive, got %d", attempts)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return "", fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempt-1, err, lastErr)
			}
			return "", fmt.Errorf("retry aborted: %w", err)
		}

		value, err := op()
		if err == nil {
			return value, nil
		}

		lastErr = err
		if onFailure != nil {
			onFailure(attempt, err)
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempt, ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
