package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event ids a handler scope has already
// processed.
type IdempotencyStore interface {
	// MarkProcessed claims eventID for ttl. It reports false when another
	// delivery already claimed it.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// Release drops a claim after a failed attempt so the next delivery runs
	Release(ctx context.Context, eventID string) error
	Close() error
}

// IdempotencyConfig controls deduplication of redelivered events. A zero TTL
// falls back to a day.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps claims for 24 hours
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
