package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_HasAfterPut(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	ok, err := s.Has(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "key-1"))

	ok, err = s.Has(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_KeysExpire(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Put(ctx, "key-1"))
	mr.FastForward(25 * time.Hour)

	ok, err := s.Has(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_HasSurfacesConnectionErrors(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, err := s.Has(ctx, "key-1")
	assert.Error(t, err)
}
