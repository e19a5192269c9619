package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("resource not found")
	ErrNoMatchHistory      = errors.New("no match history")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamFailure     = errors.New("upstream request failed")
	ErrTimeout             = errors.New("deadline exceeded")
)

// RateLimitError is returned by upstream clients on a throttling response.
type RateLimitError struct {
	Wait  time.Duration
	Scope string
}

func (e *RateLimitError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("rate limited, retry after %s", e.Wait)
	}
	return fmt.Sprintf("rate limited (%s), retry after %s", e.Scope, e.Wait)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

func (e *RateLimitError) RetryAfter() time.Duration { return e.Wait }

// isRetryable reports whether an upstream error may succeed on a later attempt.
// Non-throttling 4xx responses surface as ErrUpstreamFailure and are not retried.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, ErrTimeout):
		return true
	default:
		return false
	}
}

// fatalUpstreamError maps an exhausted upstream call that blocks the whole request.
func fatalUpstreamError(ctx context.Context, op string, err error) error {
	if isDeadline(ctx, err) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, err)
}

func isDeadline(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)
}
