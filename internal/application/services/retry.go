package services

import (
	"context"
	"errors"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
)

// RetryPolicy bounds how often a status update is re-attempted after losing
// an optimistic concurrency race.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 50 * time.Millisecond}
}

// withConcurrencyRetry re-runs operation while it fails with
// ConcurrentModification, waiting a fixed backoff between attempts. Any other
// error is returned immediately.
func withConcurrencyRetry[T any](ctx context.Context, policy RetryPolicy, operation func(ctx context.Context) (*T, error)) (*T, error) {
	attempts := max(policy.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(policy.Backoff):
			}
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
