// Package gateway talks to the external payment gateway over HTTP and adds
// retry and circuit breaking on top.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

const chargePath = "/v1/payments"

type HTTPGateway struct {
	baseURL    string
	apiKey     string
	merchantID string
	httpClient *http.Client
}

func NewHTTPGateway(cfg config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		merchantID: cfg.MerchantID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Authorize charges the payment. The payment id is sent as the idempotency
// key so a re-drive of the same payment never charges twice.
func (g *HTTPGateway) Authorize(ctx context.Context, payment *domain.Payment) (*application.AuthorizationResult, error) {
	req := buildChargeRequest(payment)
	resp, raw, err := g.send(ctx, http.MethodPost, g.baseURL+chargePath, &req, payment.ID.String())
	if err != nil {
		metrics.RecordGatewayRequest("error")
		return nil, err
	}

	result := &application.AuthorizationResult{
		Approved:    resp.Success,
		Reference:   resp.GatewayReference,
		RawResponse: raw,
	}
	if result.Reference == "" {
		result.Reference = resp.TransactionID
	}
	if result.Approved {
		metrics.RecordGatewayRequest("approved")
	} else {
		metrics.RecordGatewayRequest("declined")
	}
	return result, nil
}

func buildChargeRequest(p *domain.Payment) ChargeRequest {
	return ChargeRequest{
		PaymentID:     p.ID.String(),
		OrderID:       p.OrderID.String(),
		Amount:        p.Amount.Amount(),
		Currency:      p.Amount.Currency(),
		PaymentMethod: p.PaymentMethod,
		Description:   fmt.Sprintf("Payment for order %s", p.OrderID),
		Metadata: map[string]string{
			"orderId":   p.OrderID.String(),
			"paymentId": p.ID.String(),
			"createdAt": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
		Capture: true,
	}
}

// send returns the decoded response together with its raw body. A 402 is a
// decline and decodes like a success; any other non-2xx is a GatewayError.
func (g *HTTPGateway) send(ctx context.Context, method, url string, reqBody *ChargeRequest, idempotencyKey string) (*ChargeResponse, string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("X-Merchant-ID", g.merchantID)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error reading response: %w", err)
	}

	isSuccess := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !isSuccess && resp.StatusCode != http.StatusPaymentRequired {
		var errResp application.GatewayErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.ErrorCode == "" {
			return nil, "", &application.GatewayError{
				Code:       "unexpected_status",
				Message:    strings.TrimSpace(string(body)),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, "", &application.GatewayError{
			Code:       errResp.ErrorCode,
			Message:    errResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var chargeResp ChargeResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &chargeResp); err != nil {
			return nil, "", fmt.Errorf("error decoding json response: %w", err)
		}
	}
	if !isSuccess {
		chargeResp.Success = false
	}
	return &chargeResp, string(body), nil
}
