package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
	id, order_id, amount::text, currency, payment_method, status,
	created_at, updated_at, version
`

type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

// Save inserts a payment that has never been stored (Version 0) and otherwise
// updates it if, and only if, the stored version still matches. The returned
// copy carries the new version.
func (r *PaymentRepository) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment.Version == 0 {
		return r.insert(ctx, payment)
	}
	return r.update(ctx, payment)
}

func (r *PaymentRepository) insert(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
		INSERT INTO payments (
			id, order_id, amount, currency, payment_method, status,
			created_at, updated_at, version
		) VALUES ($1, $2, $3::text::numeric, $4, $5, $6, $7, $8, 1)
	`

	p := toDBModel(payment)
	_, err := r.q.Exec(ctx, query,
		p.ID,
		p.OrderID,
		p.Amount,
		p.Currency,
		p.PaymentMethod,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.NewConcurrentModificationError(p.ID.String(), err)
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	saved := payment.Clone()
	saved.Version = 1
	return saved, nil
}

func (r *PaymentRepository) update(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET status = $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND version = $4
	`

	tag, err := r.q.Exec(ctx, query,
		payment.ID,
		string(payment.Status),
		payment.UpdatedAt,
		payment.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, domain.NewConcurrentModificationError(
			payment.ID.String(),
			fmt.Errorf("expected version %d", payment.Version),
		)
	}

	saved := payment.Clone()
	saved.Version++
	return saved, nil
}

// FindByID retrieves a payment
func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewPaymentNotFoundError(id.String())
	}
	return payment, err
}

// FindStalePending returns PENDING payments untouched since before cutoff,
// oldest first. These are the payments a crash or gateway error left behind.
func (r *PaymentRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'PENDING' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending payments: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning rows: %w", err)
	}
	return results, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.OrderID, &m.Amount, &m.Currency, &m.PaymentMethod, &m.Status,
		&m.CreatedAt, &m.UpdatedAt, &m.Version,
	)
	if err != nil {
		return nil, err
	}
	return toDomainModel(m)
}
