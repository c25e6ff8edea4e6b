package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ratelimit:chat:"

// consumeScript runs the whole read-check-increment inside Redis so that
// concurrent API instances cannot interleave between the read and the write.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local start = tonumber(redis.call('HGET', key, 'start'))
if (not start) or (now - start >= window) then
  redis.call('HSET', key, 'start', ARGV[1], 'count', 0)
  start = now
end
local count = redis.call('HINCRBY', key, 'count', 1)
local ttl = start + window - now
if ttl < 1 then
  ttl = 1
end
redis.call('PEXPIRE', key, ttl)
return {count, start}
`)

// RedisStore shares buckets between instances through Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store; an empty prefix uses "ratelimit:chat:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) ConsumeAt(ctx context.Context, key string, now time.Time, window time.Duration) (Bucket, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key}, now.UnixMilli(), window.Milliseconds()).Int64Slice()
	if err != nil {
		return Bucket{}, fmt.Errorf("ratelimit consume %q: %w", key, err)
	}
	if len(res) != 2 {
		return Bucket{}, fmt.Errorf("ratelimit consume %q: unexpected reply length %d", key, len(res))
	}
	return Bucket{
		Count:       int(res[0]),
		WindowStart: time.UnixMilli(res[1]),
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit reset %q: %w", key, err)
	}
	return nil
}
