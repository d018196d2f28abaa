package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "history:abc", []byte(`{"total_litres":20}`), time.Minute))

	value, err := c.Get(ctx, "history:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"total_litres":20}`), value)
}

func TestRedisCache_GetMiss(t *testing.T) {
	_, c := newTestCache(t)

	_, err := c.Get(context.Background(), "history:missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "history:abc", []byte("x"), 0))
	require.NoError(t, c.Delete(ctx, "history:abc"))

	_, err := c.Get(ctx, "history:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "history:abc", []byte("x"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "history:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url")
	assert.Error(t, err)
}
