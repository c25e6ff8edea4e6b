package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := New(NewRedisStore(client, ""), Config{Window: window, MaxRequests: max})
	require.NoError(t, err)
	return l, server
}

func TestRedisStoreFixedWindow(t *testing.T) {
	l, _ := newRedisLimiter(t, 3, time.Second)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "user-1", epoch.Add(time.Duration(i)*10*time.Millisecond))
		require.NoError(t, err)
		assert.True(t, res.Allowed, "call %d", i)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "user-1", epoch.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 1, res.RetryAfter)

	res, err = l.Allow(ctx, "user-1", epoch.Add(10*time.Millisecond+time.Second))
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestRedisStoreKeysAreIndependent(t *testing.T) {
	l, _ := newRedisLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := l.Allow(ctx, "a", epoch)
	require.NoError(t, err)
	res, err := l.Allow(ctx, "a", epoch)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = l.Allow(ctx, "b", epoch)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisStoreSetsExpiryAndResets(t *testing.T) {
	l, server := newRedisLimiter(t, 5, time.Minute)
	ctx := context.Background()

	_, err := l.Allow(ctx, "k", epoch)
	require.NoError(t, err)

	assert.True(t, server.Exists(defaultRedisPrefix+"k"))
	assert.Equal(t, time.Minute, server.TTL(defaultRedisPrefix+"k"))

	require.NoError(t, l.Reset(ctx, "k"))
	assert.False(t, server.Exists(defaultRedisPrefix+"k"))
}

func TestRedisStoreErrorSurfaces(t *testing.T) {
	l, server := newRedisLimiter(t, 5, time.Minute)
	server.Close()

	_, err := l.Allow(context.Background(), "k", epoch)
	assert.Error(t, err)
}
