// Package mongostore persists orders in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"lessonhub/pkg/order"
)

// Collection is the name of the orders collection.
const Collection = "orders"

// Repository persists orders in MongoDB.
type Repository struct {
	coll *mongo.Collection
}

// New creates a MongoDB repository on db.
func New(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(Collection)}
}

// Create inserts the order and returns the generated object id.
func (r *Repository) Create(ctx context.Context, o order.Order) (string, error) {
	res, err := r.coll.InsertOne(ctx, bson.M(o.Payload()))
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, order.ErrInvalidID
	}

	var doc bson.M
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	doc[order.IDField] = oid.Hex()
	return order.Order(doc), nil
}
