package order

import (
	"strings"
	"time"

	"dacsan-be/internal/cart"
	"dacsan-be/internal/utils"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// Item is the snapshot of a cart line taken at submission time.
type Item struct {
	ProductID string `json:"product_id" firestore:"productId" bson:"product_id"`
	Name      string `json:"name" firestore:"name" bson:"name"`
	Price     int64  `json:"price" firestore:"price" bson:"price"`
	Quantity  int    `json:"quantity" firestore:"quantity" bson:"quantity"`
}

func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

// Normalize trims every field. Inner whitespace of the address and note is kept.
func (c CustomerInfo) Normalize() CustomerInfo {
	return CustomerInfo{
		Name:    utils.Clean(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
		Note:    strings.TrimSpace(c.Note),
	}
}

// Missing lists the required fields that are blank.
func (c CustomerInfo) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	return missing
}

func (c CustomerInfo) Complete() bool {
	return len(c.Missing()) == 0
}

// Order is immutable once persisted. ID comes from the store, DisplayID and
// OrderDate are assigned locally after a successful write.
type Order struct {
	ID           string    `json:"id"`
	DisplayID    string    `json:"display_id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	Address      string    `json:"address"`
	Note         string    `json:"note,omitempty"`
	Items        []Item    `json:"items"`
	Total        int64     `json:"total"`
	Status       Status    `json:"status"`
	OrderDate    time.Time `json:"order_date"`
}

// NewOrder builds a pending order from the cart lines. The total is recomputed
// from the item snapshot.
func NewOrder(lines []cart.Line, info CustomerInfo) *Order {
	items := make([]Item, 0, len(lines))
	var total int64
	for _, l := range lines {
		it := Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		}
		total += it.Subtotal()
		items = append(items, it)
	}

	return &Order{
		CustomerName: info.Name,
		Phone:        info.Phone,
		Email:        info.Email,
		Address:      info.Address,
		Note:         info.Note,
		Items:        items,
		Total:        total,
		Status:       StatusPending,
	}
}
