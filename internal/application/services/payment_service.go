package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

const (
	outcomeReplay   = "replay"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// PaymentService is the entry point used by transports and workers. It builds
// payments from commands, drives the processing core and publishes terminal
// outcomes.
type PaymentService struct {
	processor *PaymentProcessingService
	notifier  application.Notifier
	logger    *slog.Logger
}

func NewPaymentService(
	processor *PaymentProcessingService,
	notifier application.Notifier,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		processor: processor,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *PaymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*domain.Payment, error) {
	start := time.Now()

	currency := strings.ToUpper(strings.TrimSpace(cmd.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	amount, err := domain.NewMoney(cmd.Amount, currency)
	if err != nil {
		s.record("create_payment", err, nil, false, start)
		return nil, err
	}

	payment, err := domain.NewPayment(cmd.OrderID, amount, cmd.PaymentMethod)
	if err != nil {
		s.record("create_payment", err, nil, false, start)
		return nil, err
	}

	s.logger.Info("processing payment",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"amount", amount.String(),
		"payment_method", payment.PaymentMethod,
	)

	processed, replayed, err := s.processor.process(ctx, payment)
	s.record("create_payment", err, processed, replayed, start)
	if err != nil {
		s.logFailure("payment processing failed", payment.ID, err)
		return nil, err
	}

	if !replayed {
		s.notify(ctx, processed)
	}
	return processed, nil
}

// UpdateStatus applies a manual or reconciled status change and publishes it
// when the new status is terminal.
func (s *PaymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	start := time.Now()

	updated, err := s.processor.UpdatePaymentStatus(ctx, id, status)
	s.record("update_status", err, updated, false, start)
	if err != nil {
		s.logFailure("payment status update failed", id, err)
		return nil, err
	}

	if updated.IsTerminal() {
		s.notify(ctx, updated)
	}
	return updated, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.processor.GetPaymentDetails(ctx, id)
}

func (s *PaymentService) TransactionLogs(ctx context.Context, id uuid.UUID) ([]*domain.TransactionLog, error) {
	return s.processor.TransactionLogs(ctx, id)
}

// notify never fails the request: the outcome is already durable.
func (s *PaymentService) notify(ctx context.Context, payment *domain.Payment) {
	outcome := application.Outcome{
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		Status:    payment.Status,
		Amount:    payment.Amount,
	}

	if err := s.notifier.NotifyOutcome(ctx, outcome); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.Error("failed to notify payment outcome",
			"payment_id", payment.ID,
			"status", payment.Status,
			"error", err,
		)
	}
}

func (s *PaymentService) record(operation string, err error, payment *domain.Payment, replayed bool, start time.Time) {
	var outcome string
	switch {
	case err != nil && application.IsRejection(err):
		outcome = outcomeRejected
	case err != nil:
		outcome = outcomeError
	case replayed:
		outcome = outcomeReplay
	default:
		outcome = strings.ToLower(payment.Status.String())
	}
	metrics.RecordOperation(operation, outcome, time.Since(start))
}

// Rejections are expected traffic; everything else leaves an uncertain outcome.
func (s *PaymentService) logFailure(msg string, id uuid.UUID, err error) {
	level := slog.LevelError
	if application.IsRejection(err) {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, msg,
		"payment_id", id,
		"category", application.CategorizeError(err),
		"error", err,
	)
}
