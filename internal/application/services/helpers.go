package services

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
)

const (
	MsgProcessingInitiated = "Payment processing initiated"
	MsgProcessingSucceeded = "Payment processed successfully"
	MsgProcessingFailed    = "Payment processing failed"
	MsgProcessingPending   = "Payment is being processed"
	MsgUnknownStatus       = "Unknown payment status"
)

func ComputeHash(v interface{}) string {
	data := fmt.Sprintf("%+v", v)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IdempotencyKey fingerprints the logical request behind a payment. Two
// payments share a key only when order, amount, method and creation instant
// all match. The instant is taken at storage precision so a reloaded payment
// yields the same key.
func IdempotencyKey(p *domain.Payment) string {
	composite := strings.Join([]string{
		p.OrderID.String(),
		p.Amount.Amount().StringFixed(2),
		p.Amount.Currency(),
		strings.ToLower(strings.TrimSpace(p.PaymentMethod)),
		p.CreatedAt.UTC().Truncate(domain.TimestampPrecision).Format(time.RFC3339Nano),
	}, "|")
	return ComputeHash(composite)
}

// StatusMessage is the caller-facing description of a status.
func StatusMessage(status domain.PaymentStatus) string {
	switch status {
	case domain.StatusSuccess:
		return MsgProcessingSucceeded
	case domain.StatusFailure:
		return MsgProcessingFailed
	case domain.StatusPending:
		return MsgProcessingPending
	default:
		return MsgUnknownStatus
	}
}
