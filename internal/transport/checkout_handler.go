package transport

import (
	"context"
	"fmt"
	"net/http"

	"dacsan-be/internal/checkout"
	"dacsan-be/internal/order"

	"github.com/skip2/go-qrcode"
)

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toCheckoutView(h.session(r).Snapshot()))
}

// step runs a flow transition and responds with the resulting snapshot.
func (h *Handler) step(fn func(*checkout.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.session(r)
		if err := fn(s); err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toCheckoutView(s.Snapshot()))
	}
}

func (h *Handler) OpenCart() http.HandlerFunc  { return h.step((*checkout.Session).OpenCart) }
func (h *Handler) CloseCart() http.HandlerFunc { return h.step((*checkout.Session).CloseCart) }
func (h *Handler) Start() http.HandlerFunc     { return h.step((*checkout.Session).Checkout) }
func (h *Handler) CloseForm() http.HandlerFunc { return h.step((*checkout.Session).CloseForm) }
func (h *Handler) Dismiss() http.HandlerFunc   { return h.step((*checkout.Session).Dismiss) }

func (h *Handler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, ok := h.product(w, r, req.ProductID)
	if !ok {
		return
	}

	s := h.session(r)
	if err := s.BuyNow(p); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutView(s.Snapshot()))
}

func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var info order.CustomerInfo
	if !decodeJSON(w, r, &info) {
		return
	}

	s := h.session(r)
	if err := s.SetCustomer(info); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutView(s.Snapshot()))
}

type SubmitResponseDTO struct {
	Order    *orderView   `json:"order"`
	Checkout checkoutView `json:"checkout"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	// the write outlives a client disconnect; the order service bounds it
	o, err := s.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{
		Order:    toOrderView(o),
		Checkout: toCheckoutView(s.Snapshot()),
	})
}

// ReceiptQR renders the display id of the last placed order as a PNG QR code.
func (h *Handler) ReceiptQR(w http.ResponseWriter, r *http.Request) {
	last := h.session(r).LastResult()
	if last == nil || last.Failed || last.Order == nil {
		respondError(w, http.StatusNotFound, "no_order", "no order has been placed in this session")
		return
	}

	png, err := qrcode.Encode(last.Order.DisplayID, qrcode.Medium, 256)
	if err != nil {
		handleError(w, r, fmt.Errorf("encode qr: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
