package notification

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
)

// LogNotifier only logs outcomes. Used when Kafka is disabled.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyOutcome(_ context.Context, outcome application.Outcome) error {
	n.logger.Info("payment outcome",
		"payment_id", outcome.PaymentID,
		"order_id", outcome.OrderID,
		"status", outcome.Status,
		"amount", outcome.Amount.String(),
	)
	return nil
}
