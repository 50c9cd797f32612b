package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := NewRedisClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c := NewRedisCache(getRedisClient(t), "test:")
	ctx := context.Background()
	require.NoError(t, c.Delete(ctx, "warehouses.all"))

	var got payload
	found, err := c.Get(ctx, "warehouses.all", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "warehouses.all", payload{Name: "Main", Count: 2}, time.Minute))
	found, err = c.Get(ctx, "warehouses.all", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "Main", Count: 2}, got)

	require.NoError(t, c.Delete(ctx, "warehouses.all", "warehouse.1.inventory"))
	found, err = c.Get(ctx, "warehouses.all", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Expira(t *testing.T) {
	c := NewRedisCache(getRedisClient(t), "test:")
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "ttl", payload{Name: "x"}, 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)

	var got payload
	found, err := c.Get(ctx, "ttl", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNoop(t *testing.T) {
	var c Noop
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, "k"))
}
