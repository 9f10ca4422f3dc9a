package catalog

// Product is an immutable catalog entry. Prices are whole VND.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         int64   `json:"price"`
	OriginalPrice int64   `json:"original_price"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
	Stock         int     `json:"stock"`
	Badge         string  `json:"badge"`
	Description   string  `json:"description,omitempty"`
	Weight        string  `json:"weight,omitempty"`
}

// Savings is the difference between the list price and the selling price.
func (p Product) Savings() int64 {
	if p.OriginalPrice <= p.Price {
		return 0
	}
	return p.OriginalPrice - p.Price
}

// DiscountPercent rounds down to a whole percent.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice <= 0 {
		return 0
	}
	return int(p.Savings() * 100 / p.OriginalPrice)
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
}
