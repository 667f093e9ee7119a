package postgres

import (
	"time"

	"github.com/google/uuid"
)

// PaymentModel mirrors a payments row. Amount travels as text so NUMERIC
// keeps its exact decimal value.
type PaymentModel struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	Amount        string
	Currency      string
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int
}

type TransactionLogModel struct {
	ID              uuid.UUID
	PaymentID       uuid.UUID
	GatewayResponse string
	StatusCode      int
	Message         string
	CreatedAt       time.Time
}
