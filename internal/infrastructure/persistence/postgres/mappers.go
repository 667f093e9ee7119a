package postgres

import (
	"fmt"
	"strings"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
)

// toDomainModel: maps db model to domain entity
func toDomainModel(m PaymentModel) (*domain.Payment, error) {
	amount, err := domain.ParseMoney(m.Amount, strings.TrimSpace(m.Currency))
	if err != nil {
		return nil, fmt.Errorf("payment %s has corrupt amount: %w", m.ID, err)
	}

	return domain.Reconstitute(
		m.ID,
		m.OrderID,
		amount,
		m.PaymentMethod,
		domain.PaymentStatus(m.Status),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
		m.Version,
	), nil
}

// toDBModel: maps domain entity to db model
func toDBModel(p *domain.Payment) PaymentModel {
	return PaymentModel{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount.Amount().String(),
		Currency:      p.Amount.Currency(),
		PaymentMethod: p.PaymentMethod,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

func toDomainLog(m TransactionLogModel) *domain.TransactionLog {
	return &domain.TransactionLog{
		ID:              m.ID,
		PaymentID:       m.PaymentID,
		GatewayResponse: m.GatewayResponse,
		StatusCode:      m.StatusCode,
		Message:         m.Message,
		Timestamp:       m.CreatedAt.UTC(),
	}
}
