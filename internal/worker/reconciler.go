// Package worker runs background jobs that finish payments left PENDING by a
// gateway or database failure.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
)

var errEmptyGatewayResult = errors.New("gateway returned neither a result nor an error")

// StalePaymentFinder lists PENDING payments not touched since cutoff.
type StalePaymentFinder interface {
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error)
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error)
}

type Reconciler struct {
	finder      StalePaymentFinder
	gateway     application.Gateway
	updater     StatusUpdater
	idempotency application.IdempotencyStore
	interval    time.Duration
	batchSize   int
	staleAfter  time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewReconciler(
	finder StalePaymentFinder,
	gateway application.Gateway,
	updater StatusUpdater,
	idempotency application.IdempotencyStore,
	interval time.Duration,
	batchSize int,
	staleAfter time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		finder:      finder,
		gateway:     gateway,
		updater:     updater,
		idempotency: idempotency,
		interval:    interval,
		batchSize:   batchSize,
		staleAfter:  staleAfter,
		logger:      logger,
		now:         time.Now,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting background reconciler",
		"interval", r.interval, "batch_size", r.batchSize, "stale_after", r.staleAfter)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping background reconciler")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle and returns how many
// payments reached a terminal status.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	cutoff := r.now().Add(-r.staleAfter)
	pending, err := r.finder.FindStalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch stale pending payments", "error", err)
		return 0
	}

	if len(pending) == 0 {
		return 0
	}

	r.logger.Info("reconciling stuck payments", "count", len(pending))

	resolved := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := r.reconcile(ctx, p); err != nil {
			r.logger.Error("reconciliation failed for payment", "payment_id", p.ID, "error", err)
			continue
		}
		resolved++
	}
	return resolved
}

// reconcile re-drives the charge. The gateway dedupes on the payment id, so
// a charge that already went through comes back with its original result.
func (r *Reconciler) reconcile(ctx context.Context, p *domain.Payment) error {
	result, err := r.gateway.Authorize(ctx, p)
	if err != nil {
		return err
	}

	if result == nil {
		return errEmptyGatewayResult
	}

	next := domain.StatusFailure
	if result.Approved {
		next = domain.StatusSuccess
	}

	updated, err := r.updater.UpdateStatus(ctx, p.ID, next)
	if err != nil {
		return err
	}

	if err := r.idempotency.Record(ctx, services.IdempotencyKey(updated), updated.ID); err != nil {
		r.logger.Warn("failed to record idempotency key after reconciliation",
			"payment_id", updated.ID, "error", err)
	}

	r.logger.Info("successfully reconciled payment", "payment_id", updated.ID, "new_status", updated.Status)
	return nil
}
