package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryAfterHint is implemented by errors that carry an upstream-provided wait.
type RetryAfterHint interface {
	RetryAfter() time.Duration
}

// Retry runs op until it succeeds, shouldRetry rejects the error, or the policy's
// attempt ceiling is reached. The wait between attempts follows an exponential
// schedule, stretched to any RetryAfterHint the error carries. A wait that would
// overrun the context deadline ends the loop with the last error.
func Retry[T any](
	ctx context.Context,
	policy RetryPolicy,
	shouldRetry func(error) bool,
	op func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T
	if op == nil {
		return zero, errors.New("retry operation is required")
	}
	policy = NormalizeRetryPolicy(policy)

	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = policy.InitialInterval
	schedule.MaxInterval = policy.MaxInterval
	schedule.Multiplier = policy.Multiplier
	schedule.RandomizationFactor = policy.Jitter
	schedule.Reset()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				return zero, err
			}
			return zero, fmt.Errorf("%w (last error: %w)", err, lastErr)
		}

		value, err := op(ctx, attempt)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt >= policy.MaxAttempts || shouldRetry == nil || !shouldRetry(err) {
			return zero, err
		}

		wait := schedule.NextBackOff()
		if wait == backoff.Stop {
			return zero, err
		}
		var hint RetryAfterHint
		if errors.As(err, &hint) && hint.RetryAfter() > wait {
			wait = hint.RetryAfter()
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return zero, err
		}

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%w (last error: %w)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
}
