package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionLogRepository is insert-only; rows are never updated.
type TransactionLogRepository struct {
	q Executor
}

func NewTransactionLogRepository(db *DB) *TransactionLogRepository {
	return &TransactionLogRepository{q: db.Pool}
}

func (r *TransactionLogRepository) Save(ctx context.Context, log *domain.TransactionLog) (*domain.TransactionLog, error) {
	query := `
		INSERT INTO transaction_logs (id, payment_id, gateway_response, status_code, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		log.ID,
		log.PaymentID,
		log.GatewayResponse,
		log.StatusCode,
		log.Message,
		log.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction log: %w", err)
	}
	return log, nil
}

func (r *TransactionLogRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.TransactionLog, error) {
	query := `
		SELECT id, payment_id, gateway_response, status_code, message, created_at
		FROM transaction_logs
		WHERE payment_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.q.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("query transaction logs: %w", err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.TransactionLog, error) {
		var m TransactionLogModel
		err := row.Scan(&m.ID, &m.PaymentID, &m.GatewayResponse, &m.StatusCode, &m.Message, &m.CreatedAt)
		return toDomainLog(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning rows: %w", err)
	}
	return logs, nil
}
