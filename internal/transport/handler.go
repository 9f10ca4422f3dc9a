package transport

import (
	"context"
	"net/http"
	"time"

	"dacsan-be/internal/catalog"
	"dacsan-be/internal/checkout"
	"dacsan-be/internal/logger"
	"dacsan-be/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type Handler struct {
	catalog  catalog.Store
	sessions *session.Registry
	upgrader websocket.Upgrader
	timeout  time.Duration
}

func NewHandler(store catalog.Store, sessions *session.Registry, allowedOrigins []string, timeout time.Duration) *Handler {
	return &Handler{
		catalog:  store,
		sessions: sessions,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		timeout:  timeout,
	}
}

// session returns the checkout session resolved by the session middleware.
func (h *Handler) session(r *http.Request) *checkout.Session {
	return h.sessions.Get(r.Context(), logger.SessionIDFrom(r.Context()))
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// --- catalog ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(p))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// --- cart ---

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toCheckoutView(h.session(r).Snapshot()))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	p, ok := h.product(w, r, req.ProductID)
	if !ok {
		return
	}

	s := h.session(r)
	if err := s.AddToCart(p); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCheckoutView(s.Snapshot()))
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	s := h.session(r)
	if err := s.UpdateQuantity(chi.URLParam(r, "product_id"), req.Delta); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutView(s.Snapshot()))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.RemoveFromCart(chi.URLParam(r, "product_id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutView(s.Snapshot()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.ClearCart(); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutView(s.Snapshot()))
}

func (h *Handler) product(w http.ResponseWriter, r *http.Request, id string) (catalog.Product, bool) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return catalog.Product{}, false
	}
	return p, true
}
