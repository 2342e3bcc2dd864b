package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/famlink/family-api/internal/core/ports"
)

// CounterStore implements ports.CounterStore on Redis. Records are JSON
// values with a TTL equal to the remaining window, so stale counters vanish
// on their own. Read-then-write without locking: a lost increment under
// contention only makes the limit slightly more generous.
type CounterStore struct {
	client *redis.Client
}

func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

func (s *CounterStore) Get(ctx context.Context, key string) (*ports.Counter, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("counter get: %w", err)
	}

	var counter ports.Counter
	if err := json.Unmarshal([]byte(raw), &counter); err != nil {
		return nil, fmt.Errorf("counter decode: %w", err)
	}
	return &counter, nil
}

func (s *CounterStore) Set(ctx context.Context, key string, counter ports.Counter, ttl time.Duration) error {
	raw, err := json.Marshal(counter)
	if err != nil {
		return fmt.Errorf("counter encode: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("counter set: %w", err)
	}
	return nil
}
