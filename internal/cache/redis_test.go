package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type tier struct {
		Code         string  `json:"code"`
		MinimumPrice float64 `json:"minimum_price"`
	}

	in := tier{Code: "berline", MinimumPrice: 25}
	require.NoError(t, c.Set(ctx, "tiers:active", in, time.Minute))

	var out tier
	require.NoError(t, c.Get(ctx, "tiers:active", &out))
	assert.Equal(t, in, out)
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var out string
	err := c.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_Expiration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tiers:active", "v", 30*time.Second))

	mr.FastForward(time.Minute)

	var out string
	assert.ErrorIs(t, c.Get(ctx, "tiers:active", &out), ErrMiss)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, 0))
	require.NoError(t, c.Delete(ctx, "k"))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
