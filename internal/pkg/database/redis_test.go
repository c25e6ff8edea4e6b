package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRedisEmptyURL(t *testing.T) {
	client, err := NewRedis("")
	require.NoError(t, err)
	require.Nil(t, client)
	require.NoError(t, RedisPinger{}.PingContext(context.Background()))
}

func TestNewRedisAndPinger(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer CloseRedis(client)

	require.NoError(t, RedisPinger{Client: client}.PingContext(context.Background()))

	mr.Close()
	require.Error(t, RedisPinger{Client: client}.PingContext(context.Background()))
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis("not-a-url://")
	require.Error(t, err)
}
