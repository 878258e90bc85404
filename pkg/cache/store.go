// Package cache stores generated insight lists keyed by a dataset
// fingerprint.
package cache

import (
	"context"
	"time"
)

// Store is a key-value backend with per-write TTLs. Get returns
// apperrors.ErrCacheMiss when the key is absent or expired.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Keys lists live keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// HitStats reports the backend's own lookup counters.
	HitStats(ctx context.Context) (hits, misses int64, err error)

	Close() error
}
