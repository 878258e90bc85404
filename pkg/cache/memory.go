package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
)

// DefaultMemorySize is the entry limit used when none is configured.
const DefaultMemorySize = 1024

// MemoryStore is an in-process Store for running without Redis. It bounds
// the number of entries and expires all of them after the same TTL; the ttl
// passed to Set is ignored.
type MemoryStore struct {
	lru    *expirable.LRU[string, []byte]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryStore creates a MemoryStore holding at most size entries for ttl.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := s.lru.Get(key)
	if !ok {
		s.misses.Add(1)
		return nil, apperrors.ErrCacheMiss
	}
	s.hits.Add(1)
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.lru.Add(key, value)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.lru.Remove(k)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for _, k := range s.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *MemoryStore) HitStats(context.Context) (int64, int64, error) {
	return s.hits.Load(), s.misses.Load(), nil
}

func (s *MemoryStore) Close() error {
	s.lru.Purge()
	return nil
}

var _ Store = (*MemoryStore)(nil)
