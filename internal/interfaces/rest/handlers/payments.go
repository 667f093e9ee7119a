// Package handlers serves the payment API over net/http.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-core/internal/interfaces/rest"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, cmd services.CreatePaymentCommand) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	TransactionLogs(ctx context.Context, id uuid.UUID) ([]*domain.TransactionLog, error)
}

type PaymentHandler struct {
	service  PaymentService
	validate *validator.Validate
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/payments", h.HandleCreate)
	mux.HandleFunc("GET /api/v1/payments/{id}", h.HandleGet)
	mux.HandleFunc("PATCH /api/v1/payments/{id}/status", h.HandleUpdateStatus)
	mux.HandleFunc("GET /api/v1/payments/{id}/logs", h.HandleLogs)
}

type CreatePaymentRequest struct {
	OrderID       string          `json:"order_id" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"omitempty,len=3,alpha"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=50"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type PaymentResponse struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	OrderID       uuid.UUID `json:"order_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TransactionLogResponse struct {
	ID              uuid.UUID `json:"id"`
	PaymentID       uuid.UUID `json:"payment_id"`
	GatewayResponse string    `json:"gateway_response"`
	StatusCode      int       `json:"status_code"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
}

// HandleCreate answers 200 for a successful charge, 202 while the outcome is
// pending and 402 when the gateway declined.
func (h *PaymentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(fmt.Errorf("malformed request body: %w", err)))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	cmd := services.CreatePaymentCommand{
		OrderID:       uuid.MustParse(req.OrderID),
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	}

	payment, err := h.service.CreatePayment(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	status := http.StatusOK
	switch payment.Status {
	case domain.StatusPending:
		status = http.StatusAccepted
	case domain.StatusFailure:
		status = http.StatusPaymentRequired
	}
	rest.WriteJSON(w, status, payment.Status != domain.StatusFailure, toPaymentResponse(payment))
}

func (h *PaymentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, true, toPaymentResponse(payment))
}

func (h *PaymentHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(fmt.Errorf("malformed request body: %w", err)))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	status, err := domain.ParsePaymentStatus(req.Status)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	payment, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, true, toPaymentResponse(payment))
}

func (h *PaymentHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	logs, err := h.service.TransactionLogs(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	out := make([]TransactionLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, TransactionLogResponse{
			ID:              l.ID,
			PaymentID:       l.PaymentID,
			GatewayResponse: l.GatewayResponse,
			StatusCode:      l.StatusCode,
			Message:         l.Message,
			Timestamp:       l.Timestamp,
		})
	}
	rest.WriteJSON(w, http.StatusOK, true, out)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(fmt.Errorf("invalid payment id %q", r.PathValue("id"))))
		return uuid.Nil, false
	}
	return id, true
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount.Amount().StringFixed(2),
		Currency:      p.Amount.Currency(),
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status.String(),
		Message:       services.StatusMessage(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
