// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lessonhub/pkg/order"
)

// Repository provides an in-memory implementation of order.Repository.
// Identifiers have the same object id format as the MongoDB store.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[string]order.Order)}
}

// Create stores the order under a new identifier.
func (r *Repository) Create(ctx context.Context, o order.Order) (string, error) {
	id := primitive.NewObjectID().Hex()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[id] = o.Payload()
	return id, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, order.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	out := o.Payload()
	out[order.IDField] = id
	return out, nil
}

// Len returns the number of stored orders.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
