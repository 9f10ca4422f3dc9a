package transport

import (
	"net/http"

	"dacsan-be/internal/logger"
	"dacsan-be/internal/metrics"
	"dacsan-be/internal/middleware"
	"dacsan-be/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Issuer         *session.Issuer
	Limiter        *middleware.Limiter
	AllowedOrigins []string
	SecureCookie   bool
}

// NewRouter wires the HTTP API.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"metrics": metrics.Snapshot(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Issuer, cfg.SecureCookie))
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/categories", h.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Patch("/items/{product_id}", h.UpdateQuantity)
			r.Delete("/items/{product_id}", h.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.GetCheckout)
			r.Post("/cart/open", h.OpenCart())
			r.Post("/cart/close", h.CloseCart())
			r.Post("/start", h.Start())
			r.Post("/buy-now", h.BuyNow)
			r.Put("/customer", h.SetCustomer)
			r.Post("/close", h.CloseForm())
			r.Post("/submit", h.Submit)
			r.Post("/dismiss", h.Dismiss())
			r.Get("/receipt/qr", h.ReceiptQR)
		})

		r.Get("/events", h.Events)
	})

	return r
}
