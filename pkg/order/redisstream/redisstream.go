// Package redisstream announces created orders on a Redis stream so that a
// downstream consumer can reserve spaces or send confirmations.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lessonhub/pkg/order"
)

// DefaultStream is the stream orders are appended to.
const DefaultStream = "orders.created"

// Notifier appends an entry per order with fields "id" and "payload" (JSON).
type Notifier struct {
	client *redis.Client
	stream string
	maxLen int64
}

// New returns a notifier writing to stream, capped at roughly maxLen entries
// when maxLen > 0.
func New(client *redis.Client, stream string, maxLen int64) *Notifier {
	if stream == "" {
		stream = DefaultStream
	}
	return &Notifier{client: client, stream: stream, maxLen: maxLen}
}

// OrderCreated implements order.Notifier.
func (n *Notifier) OrderCreated(ctx context.Context, id string, o order.Order) error {
	payload, err := json.Marshal(o.Payload())
	if err != nil {
		return fmt.Errorf("encode order %s: %w", id, err)
	}

	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]any{"id": id, "payload": string(payload)},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}

	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	return nil
}
