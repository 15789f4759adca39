// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidAttempts is returned by Do when maxAttempts is not positive.
var ErrInvalidAttempts = errors.New("maxAttempts must be greater than 0")

// Do calls op up to maxAttempts times, sleeping baseDelay, 2*baseDelay,
// 4*baseDelay... between failures. op receives the attempt number,
// starting at 1.
//
// Returns the last error if every attempt fails, or the context error if
// ctx ends first.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(attempt int) error) error {
	if maxAttempts <= 0 {
		return ErrInvalidAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(attempt)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Debug("operation failed", "attempt", attempt, "max_attempts", maxAttempts, "err", lastErr)
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
