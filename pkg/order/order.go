// Package order defines order intake. Orders are free-form documents stored
// as submitted; the store assigns the identifier.
package order

import (
	"context"
	"errors"
)

// Order represents a purchase request. Its shape is chosen by the caller.
// Nothing ties it to an existing lesson or reserves spaces.
type Order map[string]any

// IDField is the document key holding the store identifier.
const IDField = "_id"

// Payload returns the order without the identifier, as it will be stored.
func (o Order) Payload() Order {
	out := make(Order, len(o))
	for k, v := range o {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// Repository defines behavior for persisting orders.
type Repository interface {
	Create(ctx context.Context, o Order) (string, error)
	Get(ctx context.Context, id string) (Order, error)
}

// Notifier announces accepted orders to downstream consumers.
type Notifier interface {
	OrderCreated(ctx context.Context, id string, o Order) error
}

var (
	// ErrNotFound indicates the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidID indicates the identifier has the wrong format for the store.
	ErrInvalidID = errors.New("invalid order id")
)
