package handlers

import (
	"context"
	"net/http"

	"github.com/DanielPopoola/ficmart-payment-core/internal/interfaces/rest"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealth serves GET /healthz, which fails while the database is unreachable.
func RegisterHealth(mux *http.ServeMux, db Pinger) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			rest.WriteJSON(w, http.StatusServiceUnavailable, false, map[string]string{"status": "unavailable"})
			return
		}
		rest.WriteJSON(w, http.StatusOK, true, map[string]string{"status": "ok"})
	})
}
