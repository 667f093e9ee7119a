// Package domain holds the payment entity, its audit log and the rules that guard them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	Amount        Money
	PaymentMethod string
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Version is the optimistic concurrency counter. Zero until first persisted.
	Version int
}

// TimestampPrecision matches what Postgres timestamptz keeps, so a payment
// reads back with the same timestamps it was created with.
const TimestampPrecision = time.Microsecond

func stamp() time.Time {
	return time.Now().UTC().Truncate(TimestampPrecision)
}

// NewPayment creates a payment with a fresh identity in PENDING state.
func NewPayment(orderID uuid.UUID, amount Money, paymentMethod string) (*Payment, error) {
	now := stamp()
	p := &Payment{
		ID:            uuid.New(),
		OrderID:       orderID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := ValidatePayment(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CanTransitionTo runs the transition guard against the current status
// without mutating the payment.
func (p *Payment) CanTransitionTo(next PaymentStatus) error {
	return validateTransition(p.ID.String(), p.Status, next)
}

// UpdateStatus is the only way to mutate a payment. It re-validates the
// transition and refreshes UpdatedAt.
func (p *Payment) UpdateStatus(next PaymentStatus) error {
	if err := p.CanTransitionTo(next); err != nil {
		return err
	}
	p.Status = next

	now := stamp()
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = now
	return nil
}

func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// Clone returns a copy that shares no mutable state with p.
func (p *Payment) Clone() *Payment {
	c := *p
	return &c
}

// Reconstitute - Special constructor for loading from DB
func Reconstitute(
	id, orderID uuid.UUID,
	amount Money,
	paymentMethod string,
	status PaymentStatus,
	createdAt, updatedAt time.Time,
	version int,
) *Payment {
	return &Payment{
		ID:            id,
		OrderID:       orderID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		Version:       version,
	}
}
