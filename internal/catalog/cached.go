package catalog

import (
	"context"
	"fmt"
	"sync"

	"dacsan-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cached loads the whole catalog from a source once and serves every read from memory.
// Concurrent first reads share a single load.
type Cached struct {
	source Store

	sfg singleflight.Group

	mu       sync.RWMutex
	snapshot Store
}

func NewCached(source Store) *Cached {
	return &Cached{source: source}
}

func (c *Cached) ListProducts(ctx context.Context) ([]Product, error) {
	s, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListProducts(ctx)
}

func (c *Cached) GetProduct(ctx context.Context, id string) (Product, error) {
	s, err := c.current(ctx)
	if err != nil {
		return Product{}, err
	}
	return s.GetProduct(ctx, id)
}

func (c *Cached) ListCategories(ctx context.Context) ([]Category, error) {
	s, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListCategories(ctx)
}

// Refresh reloads the catalog from the source. The previous snapshot is kept on failure.
func (c *Cached) Refresh(ctx context.Context) error {
	_, err := c.load(ctx, true)
	return err
}

func (c *Cached) current(ctx context.Context) (Store, error) {
	c.mu.RLock()
	s := c.snapshot
	c.mu.RUnlock()
	if s != nil {
		return s, nil
	}
	return c.load(ctx, false)
}

func (c *Cached) load(ctx context.Context, force bool) (Store, error) {
	v, err, shared := c.sfg.Do("catalog", func() (any, error) {
		if !force {
			c.mu.RLock()
			s := c.snapshot
			c.mu.RUnlock()
			if s != nil {
				return s, nil
			}
		}

		products, err := c.source.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		categories, err := c.source.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		s, err := NewStaticStore(products, categories)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.snapshot = s
		c.mu.Unlock()

		logger.FromCtx(ctx).Info("catalog loaded",
			zap.Int("products", len(products)),
			zap.Int("categories", len(categories)),
		)
		return s, nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("catalog load failed", zap.Error(err), zap.Bool("shared", shared))
		return nil, err
	}
	return v.(Store), nil
}
