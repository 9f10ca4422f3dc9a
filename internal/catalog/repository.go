package catalog

import (
	"context"
	"database/sql"
	"errors"

	"dacsan-be/internal/logger"

	"go.uber.org/zap"
)

const productColumns = `id, name, price, original_price, unit, category, image,
	rating, reviews, stock, badge, description, weight`

type repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres backed Store reading the products and categories tables.
func NewRepository(db *sql.DB) Store {
	return &repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var (
		p           Product
		description sql.NullString
		weight      sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.OriginalPrice, &p.Unit, &p.Category, &p.Image,
		&p.Rating, &p.Reviews, &p.Stock, &p.Badge, &description, &weight,
	)
	if err != nil {
		return Product{}, err
	}
	p.Description = description.String
	p.Weight = weight.String
	return p, nil
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)

	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY position, id`)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("products loaded", zap.Int("count", len(products)))
	return products, nil
}

func (r *repository) GetProduct(ctx context.Context, id string) (Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get product",
			zap.String("layer", "repository"),
			zap.String("product_id", id),
			zap.Error(err),
		)
		return Product{}, err
	}
	return p, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image, description FROM categories ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
