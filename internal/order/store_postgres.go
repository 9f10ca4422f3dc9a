package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// PostgresStore writes the order and its items in one transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Persist(ctx context.Context, o *Order) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_name, phone, email,
			address, note, total, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
	`,
		id,
		o.CustomerName,
		o.Phone,
		nullable(o.Email),
		o.Address,
		nullable(o.Note),
		o.Total,
		string(o.Status),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return "", ErrDuplicateOrder
		}
		return "", err
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, name, price, quantity
			) VALUES ($1,$2,$3,$4,$5)
		`,
			id,
			it.ProductID,
			it.Name,
			it.Price,
			it.Quantity,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
