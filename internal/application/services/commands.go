package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency applies when a create request leaves the currency blank.
const DefaultCurrency = "USD"

type CreatePaymentCommand struct {
	OrderID       uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
}
