package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
)

type RetryGateway struct {
	inner      application.Gateway
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryGateway(inner application.Gateway, cfg config.RetryConfig) *RetryGateway {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryGateway{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: maxRetries,
	}
}

// Authorize with retry logic
func (r *RetryGateway) Authorize(ctx context.Context, payment *domain.Payment) (*application.AuthorizationResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.AuthorizationResult, error) {
		return r.inner.Authorize(ctx, payment)
	})
}

func retry[T any](r *RetryGateway, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(ctx, err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			timer := time.NewTimer(r.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// An open breaker fails fast, and a cancelled caller is never retried.
func isRetryable(ctx context.Context, err error) bool {
	if errors.Is(err, application.ErrGatewayUnavailable) {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	return application.IsRetryable(err)
}

// Backoff calculation with exponential delay and jitter
func (r *RetryGateway) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	if r.baseDelay <= 0 {
		return base
	}
	jitter := time.Duration(rand.Int64N(int64(r.baseDelay)))
	return base + jitter
}
