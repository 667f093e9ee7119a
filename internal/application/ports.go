package application

import (
	"context"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
)

// PaymentRepository is the port for payment persistence.
// Save returns the stored copy with its version advanced; a stale write is a
// ConcurrentModification domain error. FindByID misses with PaymentNotFound.
type PaymentRepository interface {
	Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

// TransactionLogRepository is append-only.
type TransactionLogRepository interface {
	Save(ctx context.Context, log *domain.TransactionLog) (*domain.TransactionLog, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.TransactionLog, error)
}

// AuthorizationResult is what the gateway decided about a charge.
type AuthorizationResult struct {
	Approved    bool
	Reference   string
	RawResponse string
}

// Gateway is the port for the external payment gateway.
type Gateway interface {
	Authorize(ctx context.Context, payment *domain.Payment) (*AuthorizationResult, error)
}

// Outcome is published once per terminal transition.
type Outcome struct {
	PaymentID uuid.UUID
	OrderID   uuid.UUID
	Status    domain.PaymentStatus
	Amount    domain.Money
}

type Notifier interface {
	NotifyOutcome(ctx context.Context, outcome Outcome) error
}

// IdempotencyStore maps a request fingerprint to the payment it produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (uuid.UUID, bool, error)
	Record(ctx context.Context, key string, paymentID uuid.UUID) error
}

// KeyedLocker serializes work per key. The returned unlock is safe to call more than once.
type KeyedLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
