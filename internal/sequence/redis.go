package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSequencer draws values from a Redis INCR key, which is atomic across
// every process sharing the key.
type RedisSequencer struct {
	client *redis.Client
	key    string
}

// NewRedisSequencer seeds key with highWater when it does not exist yet and
// returns a sequencer over it. An existing key keeps its value.
func NewRedisSequencer(ctx context.Context, client *redis.Client, key string, highWater int64) (*RedisSequencer, error) {
	if client == nil {
		return nil, fmt.Errorf("sequence: redis client required")
	}
	if key == "" {
		return nil, fmt.Errorf("sequence: key required")
	}
	if err := client.SetNX(ctx, key, highWater, 0).Err(); err != nil {
		return nil, fmt.Errorf("sequence: seed %s: %w", key, err)
	}
	return &RedisSequencer{client: client, key: key}, nil
}

// Key returns the Redis key holding the high-water mark.
func (s *RedisSequencer) Key() string { return s.key }

// Next increments the key and returns the new value.
func (s *RedisSequencer) Next(ctx context.Context) (int64, error) {
	v, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence: incr %s: %w", s.key, err)
	}
	return v, nil
}

// KeyFor namespaces a sequence name.
func KeyFor(name string) string {
	return "shopledger:seq:" + name
}
