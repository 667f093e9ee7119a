package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an immutable non-negative amount in a single ISO-4217 currency.
// Arithmetic never mixes currencies; every operation returns a new value.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney builds a Money value from an already parsed decimal.
func NewMoney(amount decimal.Decimal, currencyCode string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewInvalidAmountError(amount.String(), "amount cannot be negative")
	}
	if err := validateCurrency(currencyCode); err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: currencyCode}, nil
}

// ParseMoney parses a decimal string such as "100.00" into Money.
func ParseMoney(amount, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, NewInvalidAmountError(amount, "not a decimal number")
	}
	return NewMoney(d, currencyCode)
}

// ZeroMoney returns an amount of zero in the given currency.
func ZeroMoney(currencyCode string) (Money, error) {
	return NewMoney(decimal.Zero, currencyCode)
}

func validateCurrency(code string) error {
	if len(code) != 3 || strings.ToUpper(code) != code {
		return NewInvalidCurrencyError(code)
	}
	if _, err := currency.ParseISO(code); err != nil {
		return NewInvalidCurrencyError(code)
	}
	return nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() string { return m.currency }

// IsZero reports whether m is the zero value (no currency assigned).
func (m Money) IsZero() bool { return m.currency == "" }

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Sub(other.amount), m.currency)
}

// Equal compares amounts numerically, so 100.0 USD equals 100.00 USD.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return NewCurrencyMismatchError(m.currency, other.currency)
	}
	return nil
}
