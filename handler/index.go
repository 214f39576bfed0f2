package handler

import (
	"context"
	"net/http"
)

const Version = "1.0.0"

type index struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index describes the service and its endpoints.
func Index(rw http.ResponseWriter, r *http.Request) {
	respond(r.Context(), rw, http.StatusOK, index{
		Message: "Salon Reservation API",
		Version: Version,
		Endpoints: map[string]string{
			"create":       "POST /add",
			"lookup":       "GET /lookup/{phone_number}",
			"modify":       "PUT /modify/{reservation_id}",
			"cancel":       "DELETE /cancel/{reservation_id}",
			"availability": "GET /availability?reservation_date=YYYY-MM-DD&stylist=NAME",
			"readiness":    "GET /readiness",
			"metrics":      "GET /metrics",
		},
	})
}

// Readiness reports whether check can reach the store.
func Readiness(check func(ctx context.Context) error) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := check(ctx); err != nil {
			respondErr(ctx, rw, http.StatusInternalServerError, err)
			return
		}
		respond(ctx, rw, http.StatusOK, map[string]string{"status": "ok"})
	}
}
