package gateway

import "github.com/shopspring/decimal"

type ChargeRequest struct {
	PaymentID     string            `json:"payment_id"`
	OrderID       string            `json:"order_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Description   string            `json:"description"`
	Metadata      map[string]string `json:"metadata"`
	Capture       bool              `json:"capture"`
}

type ChargeResponse struct {
	Success          bool   `json:"success"`
	TransactionID    string `json:"transaction_id"`
	GatewayReference string `json:"gateway_reference"`
	Message          string `json:"message"`
	ErrorCode        string `json:"error_code"`
}
