package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisDialTimeout = 5 * time.Second

// NewRedis connects the optional Redis used for the shared chat rate-limit
// store and cross-instance feed fan-out. An empty URL returns a nil client and
// both features stay in-process.
func NewRedis(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		log.Warn().Msg("REDIS_URL not set; rate limits and feed events are per instance")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	// One pub/sub connection for the feed plus short Lua calls per chat request.
	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.DialTimeout = redisDialTimeout
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}

	log.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("Connected to Redis")
	return client, nil
}

// RedisPinger adapts a client to the PingContext shape used by health checks.
// A nil client is healthy: Redis is optional.
type RedisPinger struct {
	Client *redis.Client
}

// PingContext implements the health check contract
func (p RedisPinger) PingContext(ctx context.Context) error {
	if p.Client == nil {
		return nil
	}
	return p.Client.Ping(ctx).Err()
}

// CloseRedis closes client if it was opened
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis connection")
		return
	}
	log.Info().Msg("Redis connection closed")
}
