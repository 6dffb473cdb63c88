package cache

import (
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a redis-backed store when a client is available,
// otherwise an in-memory one. The in-memory store only deduplicates within
// this process.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		return NewRedisIdempotencyStore(client, "")
	}
	if logger != nil {
		logger.Warn("redis disabled, event idempotency is per process")
	}
	return NewInMemoryIdempotencyStore()
}
