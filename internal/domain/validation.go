package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	MinPaymentAmount = decimal.RequireFromString("0.01")
	MaxPaymentAmount = decimal.RequireFromString("1000000.00")
)

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// SupportedPaymentMethods is the whitelist checked by ValidatePayment.
var SupportedPaymentMethods = []string{
	"credit_card",
	"debit_card",
	"mobile_wallet",
	"bank_transfer",
	"crypto",
}

// ValidatePayment checks the payment invariants in a fixed order and returns
// the first violation: identifiers, amount, method, status, timestamps.
func ValidatePayment(p *Payment) error {
	if p == nil {
		return NewMissingFieldError("", "payment")
	}

	checks := []func(*Payment) error{
		validateIdentifiers,
		validateAmount,
		validatePaymentMethod,
		validateStatus,
		validateTimestamps,
	}
	for _, check := range checks {
		if err := check(p); err != nil {
			return err
		}
	}
	return nil
}

func validateIdentifiers(p *Payment) error {
	if p.ID == uuid.Nil {
		return NewMissingFieldError("", "payment ID")
	}
	if p.OrderID == uuid.Nil {
		return NewMissingFieldError(p.ID.String(), "order ID")
	}
	return nil
}

func validateAmount(p *Payment) error {
	id := p.ID.String()
	if p.Amount.IsZero() {
		return NewMissingFieldError(id, "amount")
	}

	amount := p.Amount.Amount()
	if amount.LessThan(MinPaymentAmount) {
		return NewOutOfRangeError(id, "amount", "must be at least "+MinPaymentAmount.StringFixed(2))
	}
	if amount.GreaterThan(MaxPaymentAmount) {
		return NewOutOfRangeError(id, "amount", "cannot exceed "+MaxPaymentAmount.StringFixed(2))
	}
	// Stored as NUMERIC(12,2); anything finer would be rounded on save.
	if !amount.Equal(amount.Round(AmountScale)) {
		return NewOutOfRangeError(id, "amount", "at most 2 decimal places")
	}
	return nil
}

func validatePaymentMethod(p *Payment) error {
	method := strings.TrimSpace(p.PaymentMethod)
	if method == "" {
		return NewMissingFieldError(p.ID.String(), "payment method")
	}
	if !slices.Contains(SupportedPaymentMethods, strings.ToLower(method)) {
		return NewUnsupportedMethodError(p.ID.String(), p.PaymentMethod)
	}
	return nil
}

// An unset status is accepted: processing defaults it to PENDING.
func validateStatus(p *Payment) error {
	if p.Status != StatusUnset && !p.Status.IsValid() {
		return NewOutOfRangeError(p.ID.String(), "status", string(p.Status))
	}
	return nil
}

func validateTimestamps(p *Payment) error {
	id := p.ID.String()
	now := time.Now()

	if p.CreatedAt.IsZero() {
		return NewMissingFieldError(id, "creation timestamp")
	}
	if p.CreatedAt.After(now) {
		return NewInvalidTimestampError(id, "creation timestamp is in the future")
	}
	if p.UpdatedAt.IsZero() {
		return NewMissingFieldError(id, "update timestamp")
	}
	if p.UpdatedAt.After(now) {
		return NewInvalidTimestampError(id, "update timestamp is in the future")
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		return NewInvalidTimestampError(id, "update timestamp cannot be before creation timestamp")
	}
	return nil
}

// ValidateTransactionLog applies the per-field checks for an audit entry.
func ValidateTransactionLog(l *TransactionLog) error {
	if l == nil {
		return NewMissingFieldError("", "transaction log")
	}
	if l.ID == uuid.Nil {
		return NewMissingFieldError("", "log ID")
	}

	id := l.ID.String()
	if l.PaymentID == uuid.Nil {
		return NewMissingFieldError(id, "payment ID")
	}
	if utf8.RuneCountInString(l.GatewayResponse) > MaxGatewayResponseLength {
		return NewOutOfRangeError(id, "gateway response", "longer than 4000 characters")
	}
	if l.StatusCode < 100 || l.StatusCode > 599 {
		return NewOutOfRangeError(id, "status code", "must be within [100, 599]")
	}
	if strings.TrimSpace(l.Message) == "" {
		return NewMissingFieldError(id, "log message")
	}
	if l.Timestamp.IsZero() {
		return NewMissingFieldError(id, "log timestamp")
	}
	if l.Timestamp.After(time.Now()) {
		return NewInvalidTimestampError(id, "log timestamp is in the future")
	}
	return nil
}
