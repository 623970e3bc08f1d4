package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(ExtractUserID)

	r.Get("/health", healthHandler)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.SubmitCart)
		r.Get("/seller/{sellerId}", h.ListBySeller)
		r.Get("/buyer/{buyerId}", h.ListByBuyer)
		r.Get("/{orderId}", h.GetOrder)
		r.Put("/{orderId}", h.AdminUpdate)
		r.Delete("/{orderId}", h.Delete)
		r.Put("/{orderId}/approve", h.Approve)
		r.Put("/{orderId}/ship", h.Ship)
		r.Put("/{orderId}/deliver", h.Deliver)
		r.Put("/{orderId}/cancel", h.Cancel)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "order-service",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
