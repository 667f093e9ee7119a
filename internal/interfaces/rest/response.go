// Package rest holds the JSON envelope shared by the HTTP handlers and middleware.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
)

type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, success bool, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: success, Data: data})
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, err error) {
	statusCode := application.ToHTTPStatus(err)

	response := APIResponse{
		Success: false,
		Error: &ErrorDetail{
			Code:    application.ToErrorCode(err),
			Message: publicMessage(err, statusCode),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// publicMessage keeps infrastructure details out of 5xx bodies.
func publicMessage(err error, statusCode int) string {
	if statusCode < http.StatusInternalServerError {
		return err.Error()
	}
	if svcErr, ok := application.IsServiceError(err); ok {
		return svcErr.Message
	}
	if _, ok := application.IsGatewayError(err); ok || errors.Is(err, application.ErrGatewayUnavailable) {
		return "payment gateway unavailable, try again later"
	}
	return "An internal error occurred"
}
