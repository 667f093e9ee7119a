package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups error codes by how callers are expected to react.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION"
	KindBusinessRule ErrorKind = "BUSINESS_RULE"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConcurrency  ErrorKind = "CONCURRENCY"
)

// DomainError represents a business logic error
type DomainError struct {
	Kind     ErrorKind
	Code     string
	Message  string
	EntityID string
	Err      error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.EntityID != "" {
		msg = fmt.Sprintf("%s (id=%s)", msg, e.EntityID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so the sentinels below
// work with errors.Is regardless of message or entity.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

const (
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency        = "INVALID_CURRENCY"
	ErrCodeCurrencyMismatch       = "CURRENCY_MISMATCH"
	ErrCodeNullStatus             = "NULL_STATUS"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeTerminalState          = "TERMINAL_STATE_VIOLATION"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeOutOfRange             = "OUT_OF_RANGE"
	ErrCodeUnsupportedMethod      = "UNSUPPORTED_METHOD"
	ErrCodeInvalidTimestamp       = "INVALID_TIMESTAMP"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

var (
	ErrInvalidAmount          = &DomainError{Kind: KindValidation, Code: ErrCodeInvalidAmount}
	ErrInvalidCurrency        = &DomainError{Kind: KindValidation, Code: ErrCodeInvalidCurrency}
	ErrCurrencyMismatch       = &DomainError{Kind: KindBusinessRule, Code: ErrCodeCurrencyMismatch}
	ErrNullStatus             = &DomainError{Kind: KindBusinessRule, Code: ErrCodeNullStatus}
	ErrInvalidTransition      = &DomainError{Kind: KindBusinessRule, Code: ErrCodeInvalidTransition}
	ErrTerminalState          = &DomainError{Kind: KindBusinessRule, Code: ErrCodeTerminalState}
	ErrMissingField           = &DomainError{Kind: KindValidation, Code: ErrCodeMissingField}
	ErrOutOfRange             = &DomainError{Kind: KindValidation, Code: ErrCodeOutOfRange}
	ErrUnsupportedMethod      = &DomainError{Kind: KindValidation, Code: ErrCodeUnsupportedMethod}
	ErrInvalidTimestamp       = &DomainError{Kind: KindValidation, Code: ErrCodeInvalidTimestamp}
	ErrPaymentNotFound        = &DomainError{Kind: KindNotFound, Code: ErrCodePaymentNotFound}
	ErrConcurrentModification = &DomainError{Kind: KindConcurrency, Code: ErrCodeConcurrentModification}
)

func NewInvalidAmountError(amount string, reason string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %q: %s", amount, reason),
	}
}

func NewInvalidCurrencyError(currency string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidCurrency,
		Message: fmt.Sprintf("invalid currency code %q", currency),
	}
}

func NewCurrencyMismatchError(left, right string) *DomainError {
	return &DomainError{
		Kind:    KindBusinessRule,
		Code:    ErrCodeCurrencyMismatch,
		Message: fmt.Sprintf("cannot operate on different currencies: %s and %s", left, right),
	}
}

func NewNullStatusError(entityID, which string) *DomainError {
	return &DomainError{
		Kind:     KindBusinessRule,
		Code:     ErrCodeNullStatus,
		Message:  fmt.Sprintf("%s status cannot be empty", which),
		EntityID: entityID,
	}
}

func NewInvalidTransitionError(entityID string, from, to PaymentStatus) *DomainError {
	return &DomainError{
		Kind:     KindBusinessRule,
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("cannot transition from %s to %s", from, to),
		EntityID: entityID,
	}
}

func NewTerminalStateError(entityID string, current PaymentStatus) *DomainError {
	return &DomainError{
		Kind:     KindBusinessRule,
		Code:     ErrCodeTerminalState,
		Message:  fmt.Sprintf("cannot transition from final status %s", current),
		EntityID: entityID,
	}
}

func NewMissingFieldError(entityID, field string) *DomainError {
	return &DomainError{
		Kind:     KindValidation,
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("%s is required", field),
		EntityID: entityID,
	}
}

func NewOutOfRangeError(entityID, field, detail string) *DomainError {
	return &DomainError{
		Kind:     KindValidation,
		Code:     ErrCodeOutOfRange,
		Message:  fmt.Sprintf("%s out of range: %s", field, detail),
		EntityID: entityID,
	}
}

func NewUnsupportedMethodError(entityID, method string) *DomainError {
	return &DomainError{
		Kind:     KindValidation,
		Code:     ErrCodeUnsupportedMethod,
		Message:  fmt.Sprintf("unsupported payment method: %s", method),
		EntityID: entityID,
	}
}

func NewInvalidTimestampError(entityID, detail string) *DomainError {
	return &DomainError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidTimestamp,
		Message:  detail,
		EntityID: entityID,
	}
}

func NewPaymentNotFoundError(id string) *DomainError {
	return &DomainError{
		Kind:     KindNotFound,
		Code:     ErrCodePaymentNotFound,
		Message:  "payment not found",
		EntityID: id,
	}
}

func NewConcurrentModificationError(id string, err error) *DomainError {
	return &DomainError{
		Kind:     KindConcurrency,
		Code:     ErrCodeConcurrentModification,
		Message:  "payment was modified concurrently",
		EntityID: id,
		Err:      err,
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsKind checks if an error is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind == kind
	}
	return false
}

// IsValidationError reports whether err is one of the validation subkinds.
func IsValidationError(err error) bool {
	return IsKind(err, KindValidation)
}
