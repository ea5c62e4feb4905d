// Package postgres stores orders as JSONB documents in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lessonhub/pkg/order"
)

// Schema creates the orders table.
const Schema = `CREATE TABLE IF NOT EXISTS orders (
	id         UUID PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the orders table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

// Create inserts a new order under a generated UUID.
func (r *Repository) Create(ctx context.Context, o order.Order) (string, error) {
	payload, err := json.Marshal(o.Payload())
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, "INSERT INTO orders (id,payload) VALUES ($1,$2)", id, payload); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, order.ErrInvalidID
	}

	var payload []byte
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM orders WHERE id=$1", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	var o order.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	o[order.IDField] = id
	return o, nil
}
