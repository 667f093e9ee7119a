package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var testKafkaConfig = config.KafkaConfig{OrderTopic: "orders", FinancialTopic: "finance"}

func newOutcome(t *testing.T, status domain.PaymentStatus) application.Outcome {
	t.Helper()
	amount, err := domain.ParseMoney("42.00", "EUR")
	require.NoError(t, err)
	return application.Outcome{
		PaymentID: uuid.New(),
		OrderID:   uuid.New(),
		Status:    status,
		Amount:    amount,
	}
}

func newTestNotifier(w *fakeWriter) *KafkaNotifier {
	n := newKafkaNotifier(w, testKafkaConfig, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return n
}

func decode(t *testing.T, msg kafka.Message) NotificationMessage {
	t.Helper()
	var out NotificationMessage
	require.NoError(t, json.Unmarshal(msg.Value, &out))
	return out
}

func TestKafkaNotifier_SuccessPublishesToBothTopics(t *testing.T) {
	w := &fakeWriter{}
	outcome := newOutcome(t, domain.StatusSuccess)

	err := newTestNotifier(w).NotifyOutcome(context.Background(), outcome)

	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	order := w.msgs[0]
	assert.Equal(t, "orders", order.Topic)
	assert.Equal(t, outcome.OrderID.String(), string(order.Key))
	orderMsg := decode(t, order)
	assert.Equal(t, EventStatusUpdate, orderMsg.EventType)
	assert.Equal(t, "SUCCESS", orderMsg.Status)
	assert.Equal(t, outcome.PaymentID, orderMsg.PaymentID)

	fin := w.msgs[1]
	assert.Equal(t, "finance", fin.Topic)
	assert.Equal(t, outcome.PaymentID.String(), string(fin.Key))
	finMsg := decode(t, fin)
	assert.Equal(t, EventProcessed, finMsg.EventType)
	assert.Equal(t, "EUR", finMsg.Currency)
	require.NotNil(t, finMsg.Amount)
	assert.Equal(t, "42", finMsg.Amount.String())
	assert.Equal(t, []byte(TypeFinancialNotification), fin.Headers[0].Value)
}

func TestKafkaNotifier_FailureOnlyNotifiesOrderService(t *testing.T) {
	w := &fakeWriter{}

	err := newTestNotifier(w).NotifyOutcome(context.Background(), newOutcome(t, domain.StatusFailure))

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "orders", w.msgs[0].Topic)
	assert.Equal(t, "FAILURE", decode(t, w.msgs[0]).Status)
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	outcome := newOutcome(t, domain.StatusSuccess)

	err := newTestNotifier(w).NotifyOutcome(context.Background(), outcome)

	require.Error(t, err)
	assert.ErrorContains(t, err, outcome.PaymentID.String())
	assert.ErrorContains(t, err, "broker down")
}

func TestKafkaNotifier_Close(t *testing.T) {
	w := &fakeWriter{}

	require.NoError(t, newTestNotifier(w).Close())
	assert.True(t, w.closed)
}
