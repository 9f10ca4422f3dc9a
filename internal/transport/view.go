package transport

import (
	"time"

	"dacsan-be/internal/cart"
	"dacsan-be/internal/catalog"
	"dacsan-be/internal/checkout"
	"dacsan-be/internal/order"
	"dacsan-be/internal/utils"
)

type productView struct {
	catalog.Product
	PriceDisplay         string `json:"price_display"`
	OriginalPriceDisplay string `json:"original_price_display"`
	Savings              int64  `json:"savings"`
	SavingsDisplay       string `json:"savings_display"`
	DiscountPercent      int    `json:"discount_percent"`
}

func toProductView(p catalog.Product) productView {
	return productView{
		Product:              p,
		PriceDisplay:         utils.FormatVND(p.Price),
		OriginalPriceDisplay: utils.FormatVND(p.OriginalPrice),
		Savings:              p.Savings(),
		SavingsDisplay:       utils.FormatVND(p.Savings()),
		DiscountPercent:      p.DiscountPercent(),
	}
}

type lineView struct {
	cart.Line
	PriceDisplay    string `json:"price_display"`
	Subtotal        int64  `json:"subtotal"`
	SubtotalDisplay string `json:"subtotal_display"`
}

type orderView struct {
	*order.Order
	TotalDisplay string `json:"total_display"`
}

type resultView struct {
	Failed  bool       `json:"failed"`
	Message string     `json:"message,omitempty"`
	At      time.Time  `json:"at"`
	Order   *orderView `json:"order,omitempty"`
}

type checkoutView struct {
	State             checkout.State     `json:"state"`
	Mode              checkout.Mode      `json:"mode,omitempty"`
	Lines             []lineView         `json:"lines"`
	TotalPrice        int64              `json:"total_price"`
	TotalPriceDisplay string             `json:"total_price_display"`
	TotalItems        int                `json:"total_items"`
	Customer          order.CustomerInfo `json:"customer"`
	CanSubmit         bool               `json:"can_submit"`
	Missing           []string           `json:"missing,omitempty"`
	LastResult        *resultView        `json:"last_result,omitempty"`
}

func toOrderView(o *order.Order) *orderView {
	if o == nil {
		return nil
	}
	return &orderView{Order: o, TotalDisplay: utils.FormatVND(o.Total)}
}

func toCheckoutView(s checkout.Snapshot) checkoutView {
	lines := make([]lineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, lineView{
			Line:            l,
			PriceDisplay:    utils.FormatVND(l.Price),
			Subtotal:        l.Subtotal(),
			SubtotalDisplay: utils.FormatVND(l.Subtotal()),
		})
	}

	v := checkoutView{
		State:             s.State,
		Mode:              s.Mode,
		Lines:             lines,
		TotalPrice:        s.TotalPrice,
		TotalPriceDisplay: utils.FormatVND(s.TotalPrice),
		TotalItems:        s.TotalItems,
		Customer:          s.Customer,
		CanSubmit:         s.CanSubmit,
		Missing:           s.Missing,
	}
	if r := s.LastResult; r != nil {
		v.LastResult = &resultView{
			Failed:  r.Failed,
			Message: r.Message,
			At:      r.At,
			Order:   toOrderView(r.Order),
		}
	}
	return v
}
