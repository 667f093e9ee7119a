package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerGateway stops calling the gateway after it keeps failing and
// reports ErrGatewayUnavailable until the breaker lets a probe through.
type BreakerGateway struct {
	inner application.Gateway
	cb    *gobreaker.CircuitBreaker[*application.AuthorizationResult]
}

func NewBreakerGateway(inner application.Gateway, cfg config.BreakerConfig, logger *slog.Logger) *BreakerGateway {
	cb := gobreaker.NewCircuitBreaker[*application.AuthorizationResult](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isBreakerFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log := logger.With("breaker", name, "from", from.String(), "to", to.String())
			switch to {
			case gobreaker.StateOpen:
				log.Warn("circuit breaker open, gateway calls suspended")
			case gobreaker.StateHalfOpen:
				log.Info("circuit breaker half-open, probing gateway")
			case gobreaker.StateClosed:
				log.Info("circuit breaker closed, gateway recovered")
			}
		},
	})
	return &BreakerGateway{inner: inner, cb: cb}
}

func (b *BreakerGateway) Authorize(ctx context.Context, payment *domain.Payment) (*application.AuthorizationResult, error) {
	result, err := b.cb.Execute(func() (*application.AuthorizationResult, error) {
		return b.inner.Authorize(ctx, payment)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", application.ErrGatewayUnavailable, err)
	}
	return result, err
}

func (b *BreakerGateway) State() gobreaker.State {
	return b.cb.State()
}

// isBreakerFailure reports whether err says the gateway itself is unhealthy.
// Client errors and caller cancellation do not count against it.
func isBreakerFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if gwErr, ok := application.IsGatewayError(err); ok {
		return gwErr.IsRetryable()
	}
	return true
}
