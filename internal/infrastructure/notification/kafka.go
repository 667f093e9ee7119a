// Package notification publishes payment outcomes to downstream services.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/segmentio/kafka-go"
)

const headerNotificationType = "notification-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier tells the order service about every terminal outcome and
// the financial service about every successful charge.
type KafkaNotifier struct {
	writer         messageWriter
	orderTopic     string
	financialTopic string
	logger         *slog.Logger
	now            func() time.Time
}

func NewKafkaNotifier(cfg config.KafkaConfig, logger *slog.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaNotifier(writer, cfg, logger)
}

func newKafkaNotifier(w messageWriter, cfg config.KafkaConfig, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer:         w,
		orderTopic:     cfg.OrderTopic,
		financialTopic: cfg.FinancialTopic,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (n *KafkaNotifier) NotifyOutcome(ctx context.Context, outcome application.Outcome) error {
	now := n.now()

	orderMsg, err := n.encode(n.orderTopic, outcome.OrderID.String(), TypeOrderNotification, newOrderMessage(outcome, now))
	if err != nil {
		return err
	}
	msgs := []kafka.Message{orderMsg}

	if outcome.Status == domain.StatusSuccess {
		finMsg, err := n.encode(n.financialTopic, outcome.PaymentID.String(), TypeFinancialNotification, newFinancialMessage(outcome, now))
		if err != nil {
			return err
		}
		msgs = append(msgs, finMsg)
	}

	if err := n.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish outcome for payment %s: %w", outcome.PaymentID, err)
	}

	n.logger.Info("payment outcome published",
		"payment_id", outcome.PaymentID,
		"order_id", outcome.OrderID,
		"status", outcome.Status,
		"messages", len(msgs),
	)
	return nil
}

func (n *KafkaNotifier) encode(topic, key, notificationType string, msg NotificationMessage) (kafka.Message, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", notificationType, err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerNotificationType, Value: []byte(notificationType)},
		},
		Time: msg.Timestamp,
	}, nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
