package services

import (
	"context"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
)

// GetPaymentDetails is a plain lookup: no lock, no mutation.
func (s *PaymentProcessingService) GetPaymentDetails(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, systemError(id.String(), "load payment", err)
	}
	return payment, nil
}

// TransactionLogs returns the audit trail of a payment, oldest first.
func (s *PaymentProcessingService) TransactionLogs(ctx context.Context, id uuid.UUID) ([]*domain.TransactionLog, error) {
	if _, err := s.GetPaymentDetails(ctx, id); err != nil {
		return nil, err
	}

	logs, err := s.logRepo.FindByPaymentID(ctx, id)
	if err != nil {
		return nil, systemError(id.String(), "load transaction logs", err)
	}
	return logs, nil
}
