package checkout

import (
	"time"

	"dacsan-be/internal/cart"
	"dacsan-be/internal/order"
)

type State string

const (
	StateIdle       State = "idle"
	StateCartOpen   State = "cart_open"
	StateFormOpen   State = "form_open"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

// Mode records how the order form was entered.
type Mode string

const (
	ModeNone   Mode = ""
	ModeCart   Mode = "cart"
	ModeBuyNow Mode = "buy_now"
)

// Result is the outcome of the last submission attempt.
type Result struct {
	Order   *order.Order `json:"order,omitempty"`
	Failed  bool         `json:"failed"`
	Message string       `json:"message,omitempty"`
	At      time.Time    `json:"at"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	State      State              `json:"state"`
	Mode       Mode               `json:"mode,omitempty"`
	Lines      []cart.Line        `json:"lines"`
	TotalPrice int64              `json:"total_price"`
	TotalItems int                `json:"total_items"`
	Customer   order.CustomerInfo `json:"customer"`
	CanSubmit  bool               `json:"can_submit"`
	Missing    []string           `json:"missing,omitempty"`
	LastResult *Result            `json:"last_result,omitempty"`
}

// Saved is the persisted form of a session.
type Saved struct {
	Lines    []cart.Line        `json:"lines"`
	Customer order.CustomerInfo `json:"customer"`
	State    State              `json:"state"`
	Mode     Mode               `json:"mode,omitempty"`
}
