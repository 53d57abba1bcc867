package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window counters in Redis so that several processes share one budget.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment bumps the counter and sets its expiry only when the window starts.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (Counter, error) {
	fullKey := s.prefix + ":" + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.ExpireNX(ctx, fullKey, window)
		ttl = pipe.PTTL(ctx, fullKey)
		return nil
	})
	if err != nil {
		return Counter{}, fmt.Errorf("incrementing %s: %w", fullKey, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	return Counter{
		Count:   int(incr.Val()),
		ResetAt: time.Now().Add(remaining),
	}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
