// Package lock provides short-lived mutual exclusion across server replicas.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when another holder owns the key
var ErrNotObtained = errors.New("lock not obtained")

// Lease is a held lock
type Lease interface {
	Release(ctx context.Context) error
}

// Locker obtains named leases that expire after ttl
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// RedisLocker is backed by bsm/redislock so that only one replica holds a key
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

// NewRedisLocker creates a locker on the given redis client
func NewRedisLocker(client redis.Scripter, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "printchain:lock:"
	}
	return &RedisLocker{client: redislock.New(client), prefix: prefix}
}

// Obtain tries once and returns ErrNotObtained if the key is taken
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	held, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return redisLease{held}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (r redisLease) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// expired before we finished; nothing left to release
		return nil
	}
	return err
}

// LocalLocker serializes holders within one process. It is used when redis
// is not configured, which means a single replica.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time)}
}

// Obtain returns ErrNotObtained while an unexpired lease on key exists
func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, ErrNotObtained
	}
	until := now.Add(ttl)
	l.held[key] = until
	return &localLease{owner: l, key: key, until: until}, nil
}

type localLease struct {
	owner *LocalLocker
	key   string
	until time.Time
}

func (r *localLease) Release(_ context.Context) error {
	r.owner.mu.Lock()
	defer r.owner.mu.Unlock()
	// a later holder may own the key once ours expired
	if r.owner.held[r.key].Equal(r.until) {
		delete(r.owner.held, r.key)
	}
	return nil
}
