package catalog

import (
	"context"
	"fmt"
)

// Store is a read-only product source.
type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type staticStore struct {
	products   []Product
	index      map[string]int
	categories []Category
}

// NewStaticStore validates the given products and serves them from memory in the given order.
func NewStaticStore(products []Product, categories []Category) (Store, error) {
	s := &staticStore{
		products:   make([]Product, len(products)),
		index:      make(map[string]int, len(products)),
		categories: append([]Category(nil), categories...),
	}
	copy(s.products, products)

	for i, p := range s.products {
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, dup := s.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidProduct, p.ID)
		}
		s.index[p.ID] = i
	}
	return s, nil
}

func (s *staticStore) ListProducts(ctx context.Context) ([]Product, error) {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *staticStore) GetProduct(ctx context.Context, id string) (Product, error) {
	i, ok := s.index[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

func (s *staticStore) ListCategories(ctx context.Context) ([]Category, error) {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// Validate rejects products with missing ids or prices above the original price.
func Validate(p Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	case p.Price <= 0:
		return fmt.Errorf("%w: %s: price must be positive", ErrInvalidProduct, p.ID)
	case p.OriginalPrice < p.Price:
		return fmt.Errorf("%w: %s: original price below price", ErrInvalidProduct, p.ID)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: %s: rating out of range", ErrInvalidProduct, p.ID)
	case p.Stock < 0 || p.Reviews < 0:
		return fmt.Errorf("%w: %s: negative count", ErrInvalidProduct, p.ID)
	}
	return nil
}
