package testhelpers

import (
	"testing"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewPendingPayment returns a valid, not yet persisted PENDING payment.
func NewPendingPayment(t *testing.T) *domain.Payment {
	t.Helper()
	return NewPaymentWithAmount(t, "100.00", "USD")
}

func NewPaymentWithAmount(t *testing.T, amount, currency string) *domain.Payment {
	t.Helper()
	money, err := domain.ParseMoney(amount, currency)
	require.NoError(t, err)

	p, err := domain.NewPayment(uuid.New(), money, "credit_card")
	require.NoError(t, err)
	return p
}
