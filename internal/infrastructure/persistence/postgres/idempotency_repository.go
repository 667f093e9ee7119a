package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyRepository is the durable IdempotencyStore. Keys survive
// restarts and are shared by every instance using the database.
type IdempotencyRepository struct {
	q Executor
}

func NewIdempotencyRepository(db *DB) *IdempotencyRepository {
	return &IdempotencyRepository{q: db.Pool}
}

func (r *IdempotencyRepository) Lookup(ctx context.Context, key string) (uuid.UUID, bool, error) {
	var paymentID uuid.UUID
	err := r.q.QueryRow(ctx, `SELECT payment_id FROM idempotency_keys WHERE key = $1`, key).Scan(&paymentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return paymentID, true, nil
}

// Record keeps the first mapping written for a key.
func (r *IdempotencyRepository) Record(ctx context.Context, key string, paymentID uuid.UUID) error {
	query := `
		INSERT INTO idempotency_keys (key, payment_id)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, key, paymentID); err != nil {
		return fmt.Errorf("failed to record idempotency key: %w", err)
	}
	return nil
}
