package ingest

import (
	"context"
	"time"

	redisc "github.com/pdfwise/core/internal/pkg/redis"
)

// Locker is the single-flight guard keyed by file key. The Redis
// implementation makes the guard hold across replicas.
type Locker interface {
	// Acquire reports whether the lock was taken. false means another
	// ingestion holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisLocker implements Locker with SETNX.
type RedisLocker struct {
	rc *redisc.Client
}

func NewRedisLocker(rc *redisc.Client) *RedisLocker {
	return &RedisLocker{rc: rc}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rc.SetNX(ctx, key, "1", ttl)
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.rc.Del(ctx, key)
}
