package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/gateway"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(t *testing.T) *domain.Payment {
	t.Helper()
	amount, err := domain.ParseMoney("125.50", "USD")
	require.NoError(t, err)
	p, err := domain.NewPayment(uuid.New(), amount, "CREDIT_CARD")
	require.NoError(t, err)
	return p
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *gateway.HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gateway.NewHTTPGateway(config.GatewayConfig{
		BaseURL:    srv.URL,
		APIKey:     "sk_test",
		MerchantID: "merchant-1",
		Timeout:    2 * time.Second,
	})
}

func TestHTTPGateway_Authorize_SendsChargeRequest(t *testing.T) {
	payment := newPayment(t)

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "merchant-1", r.Header.Get("X-Merchant-ID"))
		assert.Equal(t, payment.ID.String(), r.Header.Get("Idempotency-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, payment.ID.String(), req["payment_id"])
		assert.Equal(t, payment.OrderID.String(), req["order_id"])
		assert.Equal(t, "125.5", req["amount"])
		assert.Equal(t, "USD", req["currency"])
		assert.Equal(t, "CREDIT_CARD", req["payment_method"])
		assert.Equal(t, true, req["capture"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"transaction_id":"tx_1","gateway_reference":"ref_1","message":"ok"}`))
	})

	result, err := gw.Authorize(context.Background(), payment)

	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Equal(t, "ref_1", result.Reference)
	assert.Contains(t, result.RawResponse, `"transaction_id":"tx_1"`)
}

func TestHTTPGateway_Authorize_Declines(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"payment required", http.StatusPaymentRequired, `{"success":false,"error_code":"card_declined","message":"declined"}`},
		{"ok but unsuccessful", http.StatusOK, `{"success":false,"transaction_id":"tx_2","message":"insufficient funds"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := gw.Authorize(context.Background(), newPayment(t))

			require.NoError(t, err)
			assert.False(t, result.Approved)
			assert.Equal(t, tt.body, result.RawResponse)
		})
	}
}

func TestHTTPGateway_Authorize_ErrorStatus(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error_code":"maintenance","message":"try later"}`))
	})

	result, err := gw.Authorize(context.Background(), newPayment(t))

	require.Error(t, err)
	assert.Nil(t, result)
	gwErr, ok := application.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "maintenance", gwErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.StatusCode)
	assert.True(t, gwErr.IsRetryable())
}

func TestHTTPGateway_Authorize_UnparseableErrorBody(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	})

	_, err := gw.Authorize(context.Background(), newPayment(t))

	gwErr, ok := application.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "unexpected_status", gwErr.Code)
	assert.Equal(t, "bad request", gwErr.Message)
	assert.False(t, gwErr.IsRetryable())
}
