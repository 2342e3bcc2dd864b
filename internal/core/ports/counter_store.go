package ports

import (
	"context"
	"time"
)

// Counter is one fixed-window rate-limit record.
type Counter struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// Remaining returns the seconds left until the window resets, rounded up,
// never below 1. This is the Retry-After hint handed to throttled clients.
func (c Counter) Remaining(now time.Time) int {
	d := c.ResetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	return int((d + time.Second - 1) / time.Second)
}

// CounterStore is the external key-value backend holding rate-limit counters.
// Get returns (nil, nil) when no record exists for the key.
type CounterStore interface {
	Get(ctx context.Context, key string) (*Counter, error)
	Set(ctx context.Context, key string, counter Counter, ttl time.Duration) error
}
