package domain

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status codes recorded on transaction logs. They follow HTTP semantics.
const (
	LogCodeInitiated  = 100
	LogCodeProcessing = 102
	LogCodeSuccess    = 200
	LogCodeFailure    = 400
	LogCodeUnknown    = 500
)

const MaxGatewayResponseLength = 4000

var (
	cardNumberPattern = regexp.MustCompile(`\b\d{16}\b`)
	cvvPattern        = regexp.MustCompile(`\b\d{3}\b`)
)

// TransactionLog is an append-only audit record of one processing step.
type TransactionLog struct {
	ID              uuid.UUID
	PaymentID       uuid.UUID
	GatewayResponse string
	StatusCode      int
	Message         string
	Timestamp       time.Time
}

func NewTransactionLog(paymentID uuid.UUID, gatewayResponse string, statusCode int, message string) (*TransactionLog, error) {
	log := &TransactionLog{
		ID:              uuid.New(),
		PaymentID:       paymentID,
		GatewayResponse: SanitizeGatewayResponse(gatewayResponse),
		StatusCode:      statusCode,
		Message:         message,
		Timestamp:       time.Now().UTC(),
	}

	if err := ValidateTransactionLog(log); err != nil {
		return nil, err
	}
	return log, nil
}

// SanitizeGatewayResponse masks card numbers and CVV-like digit groups and
// caps the result at MaxGatewayResponseLength characters.
func SanitizeGatewayResponse(response string) string {
	response = cardNumberPattern.ReplaceAllString(response, "****-****-****-****")
	response = cvvPattern.ReplaceAllString(response, "***")

	if utf8.RuneCountInString(response) > MaxGatewayResponseLength {
		response = string([]rune(response)[:MaxGatewayResponseLength])
	}
	return response
}

// StatusLogCode maps a target status to the code written on its log entry.
func StatusLogCode(status PaymentStatus) int {
	switch status {
	case StatusSuccess:
		return LogCodeSuccess
	case StatusFailure:
		return LogCodeFailure
	case StatusPending:
		return LogCodeProcessing
	default:
		return LogCodeUnknown
	}
}
