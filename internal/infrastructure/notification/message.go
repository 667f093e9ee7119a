package notification

import (
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	serviceName    = "payment-service"
	messageVersion = "1.0"

	TypeOrderNotification     = "ORDER_NOTIFICATION"
	TypeFinancialNotification = "FINANCIAL_NOTIFICATION"

	EventStatusUpdate = "PAYMENT_STATUS_UPDATE"
	EventProcessed    = "PAYMENT_PROCESSED"
)

type NotificationMessage struct {
	NotificationID uuid.UUID        `json:"notificationId"`
	Type           string           `json:"type"`
	EventType      string           `json:"eventType"`
	PaymentID      uuid.UUID        `json:"paymentId"`
	OrderID        uuid.UUID        `json:"orderId"`
	Status         string           `json:"status,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	ServiceName    string           `json:"serviceName"`
	Version        string           `json:"version"`
	Timestamp      time.Time        `json:"timestamp"`
}

func newOrderMessage(o application.Outcome, now time.Time) NotificationMessage {
	amount := o.Amount.Amount()
	return NotificationMessage{
		NotificationID: uuid.New(),
		Type:           TypeOrderNotification,
		EventType:      EventStatusUpdate,
		PaymentID:      o.PaymentID,
		OrderID:        o.OrderID,
		Status:         o.Status.String(),
		Amount:         &amount,
		Currency:       o.Amount.Currency(),
		ServiceName:    serviceName,
		Version:        messageVersion,
		Timestamp:      now,
	}
}

func newFinancialMessage(o application.Outcome, now time.Time) NotificationMessage {
	amount := o.Amount.Amount()
	return NotificationMessage{
		NotificationID: uuid.New(),
		Type:           TypeFinancialNotification,
		EventType:      EventProcessed,
		PaymentID:      o.PaymentID,
		OrderID:        o.OrderID,
		Amount:         &amount,
		Currency:       o.Amount.Currency(),
		ServiceName:    serviceName,
		Version:        messageVersion,
		Timestamp:      now,
	}
}
