package cart

import "dacsan-be/internal/catalog"

// Cart holds at most one line per product in insertion order. Every line has a
// quantity of at least 1. A Cart is not safe for concurrent use; callers serialise
// access per session.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add increments the line for p, or appends a new line with quantity 1.
func (c *Cart) Add(p catalog.Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, lineFrom(p))
}

// UpdateQuantity adds delta to the line's quantity, clamped at zero. A line that
// reaches zero is removed. Unknown product ids are ignored.
func (c *Cart) UpdateQuantity(productID string, delta int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	q := c.lines[i].Quantity + delta
	if q <= 0 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = q
}

func (c *Cart) Remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// BuyNow replaces the cart contents with a single unit of p.
func (c *Cart) BuyNow(p catalog.Product) {
	c.Clear()
	c.Add(p)
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) TotalPrice() int64 {
	return TotalPrice(c.lines)
}

func (c *Cart) TotalItems() int {
	return TotalItems(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Restore replaces the cart with lines loaded from a snapshot. Duplicate product ids
// are merged into the first occurrence and non-positive quantities are dropped.
func (c *Cart) Restore(lines []Line) {
	c.lines = nil
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i := c.indexOf(l.ProductID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

func TotalPrice(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func TotalItems(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
