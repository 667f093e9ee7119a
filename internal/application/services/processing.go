package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

var errEmptyGatewayResult = errors.New("gateway returned no result")

// PaymentProcessingService turns a payment request into a durable terminal
// state. Work on one payment id is serialized through the KeyedLocker.
type PaymentProcessingService struct {
	paymentRepo application.PaymentRepository
	logRepo     application.TransactionLogRepository
	gateway     application.Gateway
	idempotency application.IdempotencyStore
	locker      application.KeyedLocker
	retry       RetryPolicy
	logger      *slog.Logger
}

func NewPaymentProcessingService(
	paymentRepo application.PaymentRepository,
	logRepo application.TransactionLogRepository,
	gateway application.Gateway,
	idempotency application.IdempotencyStore,
	locker application.KeyedLocker,
	retry RetryPolicy,
	logger *slog.Logger,
) *PaymentProcessingService {
	return &PaymentProcessingService{
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		gateway:     gateway,
		idempotency: idempotency,
		locker:      locker,
		retry:       retry,
		logger:      logger,
	}
}

// ProcessPayment validates, persists and authorizes a new payment and returns
// it in a terminal state. A SystemError means the payment may be stored in a
// non-terminal state; callers should query it rather than assume failure.
func (s *PaymentProcessingService) ProcessPayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	result, _, err := s.process(ctx, payment)
	return result, err
}

// process reports whether the result was replayed from the idempotency store.
func (s *PaymentProcessingService) process(ctx context.Context, payment *domain.Payment) (*domain.Payment, bool, error) {
	if err := domain.ValidatePayment(payment); err != nil {
		return nil, false, err
	}
	if payment.Status != domain.StatusUnset && payment.Status != domain.StatusPending {
		return nil, false, domain.NewTerminalStateError(payment.ID.String(), payment.Status)
	}

	paymentID := payment.ID.String()
	unlock, err := s.locker.Lock(ctx, paymentID)
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock for payment %s: %w", paymentID, err)
	}
	defer unlock()

	key := IdempotencyKey(payment)
	if existing, found, err := s.replay(ctx, key, paymentID); err != nil || found {
		return existing, found, err
	}

	working := payment.Clone()
	if working.Status == domain.StatusUnset {
		working.Status = domain.StatusPending
	}

	stored, err := s.paymentRepo.Save(ctx, working)
	if err != nil {
		return nil, false, systemError(paymentID, "save initial payment", err)
	}

	if err := s.appendLog(ctx, stored.ID, "", domain.LogCodeInitiated, MsgProcessingInitiated); err != nil {
		return nil, false, err
	}

	s.logger.Debug("gateway interaction for payment", "payment_id", paymentID)
	result, err := s.gateway.Authorize(ctx, stored)
	if err != nil {
		return nil, false, systemError(paymentID, "gateway authorization", err)
	}
	if result == nil {
		return nil, false, application.NewSystemError(paymentID, "gateway authorization", errEmptyGatewayResult)
	}

	target, code, message := domain.StatusFailure, domain.LogCodeFailure, MsgProcessingFailed
	if result.Approved {
		target, code, message = domain.StatusSuccess, domain.LogCodeSuccess, MsgProcessingSucceeded
	}

	if err := stored.CanTransitionTo(target); err != nil {
		return nil, false, err
	}
	if err := stored.UpdateStatus(target); err != nil {
		return nil, false, err
	}

	final, err := s.paymentRepo.Save(ctx, stored)
	if err != nil {
		return nil, false, systemError(paymentID, "save final payment", err)
	}

	if err := s.appendLog(ctx, final.ID, result.RawResponse, code, message); err != nil {
		return nil, false, err
	}

	if err := s.idempotency.Record(ctx, key, final.ID); err != nil {
		metrics.IdempotencyRecordFailures.Inc()
		s.logger.Error("failed to record idempotency key",
			"payment_id", paymentID,
			"error", err,
		)
	}

	s.logger.Info("payment processed",
		"payment_id", paymentID,
		"order_id", final.OrderID,
		"status", final.Status,
		"gateway_reference", result.Reference,
	)
	return final, false, nil
}

func (s *PaymentProcessingService) replay(ctx context.Context, key, paymentID string) (*domain.Payment, bool, error) {
	recordedID, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		return nil, false, application.NewSystemError(paymentID, "idempotency lookup", err)
	}
	if !found {
		return nil, false, nil
	}

	// The key was recorded, so the payment must exist. A miss is never a
	// plain NotFound here.
	existing, err := s.paymentRepo.FindByID(ctx, recordedID)
	if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
		err = fmt.Errorf("recorded payment %s is missing: %v", recordedID, err)
	}
	if err != nil {
		return nil, false, application.NewSystemError(recordedID.String(), "load recorded payment", err)
	}

	metrics.IdempotentReplays.Inc()
	s.logger.Info("returning previously processed payment",
		"payment_id", recordedID,
		"status", existing.Status,
	)
	return existing, true, nil
}

// UpdatePaymentStatus applies a status change to a stored payment and writes
// one audit entry for it.
func (s *PaymentProcessingService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	paymentID := id.String()
	unlock, err := s.locker.Lock(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("acquire lock for payment %s: %w", paymentID, err)
	}
	defer unlock()

	return withConcurrencyRetry(ctx, s.retry, func(ctx context.Context) (*domain.Payment, error) {
		payment, err := s.paymentRepo.FindByID(ctx, id)
		if err != nil {
			return nil, systemError(paymentID, "load payment", err)
		}

		if err := payment.CanTransitionTo(status); err != nil {
			return nil, err
		}
		if err := payment.UpdateStatus(status); err != nil {
			return nil, err
		}

		saved, err := s.paymentRepo.Save(ctx, payment)
		if err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) {
				s.logger.Warn("concurrent modification on status update", "payment_id", paymentID)
			}
			return nil, systemError(paymentID, "save payment", err)
		}

		message := fmt.Sprintf("Payment status updated to %s", status)
		if err := s.appendLog(ctx, saved.ID, "", domain.StatusLogCode(status), message); err != nil {
			return nil, err
		}

		s.logger.Info("payment status updated", "payment_id", paymentID, "status", status)
		return saved, nil
	})
}

func (s *PaymentProcessingService) appendLog(ctx context.Context, paymentID uuid.UUID, gatewayResponse string, code int, message string) error {
	entry, err := domain.NewTransactionLog(paymentID, gatewayResponse, code, message)
	if err != nil {
		return err
	}
	if _, err := s.logRepo.Save(ctx, entry); err != nil {
		return systemError(paymentID.String(), "save transaction log", err)
	}
	return nil
}

// systemError wraps infrastructure failures. Domain errors, including
// NotFound and ConcurrentModification, pass through unchanged.
func systemError(paymentID, op string, err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return application.NewSystemError(paymentID, op, err)
}
