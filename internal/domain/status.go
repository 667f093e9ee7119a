package domain

import (
	"slices"
	"strings"
)

// PaymentStatus represents the current state of a payment in its lifecycle.
// The empty value means the status has not been assigned yet.
type PaymentStatus string

const (
	StatusUnset   PaymentStatus = ""
	StatusPending PaymentStatus = "PENDING"
	StatusSuccess PaymentStatus = "SUCCESS"
	StatusFailure PaymentStatus = "FAILURE"
)

// ParsePaymentStatus accepts any casing of the known statuses.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return StatusUnset, NewOutOfRangeError("", "status", s)
	}
	return status, nil
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailure:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

func (s PaymentStatus) String() string {
	return string(s)
}

// ValidateTransition is the single authority on legal status changes.
func ValidateTransition(current, next PaymentStatus) error {
	return validateTransition("", current, next)
}

func validateTransition(entityID string, current, next PaymentStatus) error {
	if current == StatusUnset {
		return NewNullStatusError(entityID, "current")
	}
	if next == StatusUnset {
		return NewNullStatusError(entityID, "new")
	}

	switch current {
	case StatusPending:
		return allow(entityID, current, next, StatusSuccess, StatusFailure)
	case StatusSuccess, StatusFailure:
		return NewTerminalStateError(entityID, current)
	}
	return NewInvalidTransitionError(entityID, current, next)
}

func allow(entityID string, current, next PaymentStatus, allowed ...PaymentStatus) error {
	if slices.Contains(allowed, next) {
		return nil
	}
	return NewInvalidTransitionError(entityID, current, next)
}
