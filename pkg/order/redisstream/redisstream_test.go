package redisstream

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonhub/pkg/order"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestOrderCreated(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	n := New(client, "", 0)

	err := n.OrderCreated(ctx, "65f1c2a4b7e8d9f0a1b2c3d4", order.Order{"name": "Ada", "_id": "x"})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "65f1c2a4b7e8d9f0a1b2c3d4", entries[0].Values["id"])
	assert.Equal(t, `{"name":"Ada"}`, entries[0].Values["payload"])
}

func TestOrderCreatedCustomStream(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	n := New(client, "shop.orders", 100)

	require.NoError(t, n.OrderCreated(ctx, "1", order.Order{"a": 1}))
	require.NoError(t, n.OrderCreated(ctx, "2", order.Order{"a": 2}))

	length, err := client.XLen(ctx, "shop.orders").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}

func TestOrderCreatedRedisDown(t *testing.T) {
	mr, client := newClient(t)
	mr.Close()

	err := New(client, "", 0).OrderCreated(context.Background(), "1", order.Order{})
	assert.Error(t, err)
}
