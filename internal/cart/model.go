package cart

import "dacsan-be/internal/catalog"

// Line is one product in the cart. Name, price, image and unit are captured when the
// product is first added and are not refreshed from the catalog afterwards.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Unit      string `json:"unit"`
	Quantity  int    `json:"quantity"`
}

func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

func lineFrom(p catalog.Product) Line {
	return Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Unit:      p.Unit,
		Quantity:  1,
	}
}
