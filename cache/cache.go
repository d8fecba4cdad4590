// Package cache is an optional redis-backed cache for the read-only list
// views. A nil *Store is valid and behaves as an always-miss cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// View names for the two cached list payloads.
const (
	BooksView = "books"
	LoansView = "loans"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(view string) string { return fmt.Sprintf("library:view:%s", view) }

// Get returns the cached JSON payload for a view, if present. Any redis
// failure counts as a miss; the caller recomputes from the engine.
func (s *Store) Get(ctx context.Context, view string) ([]byte, bool) {
	if s == nil || s.rdb == nil {
		return nil, false
	}
	b, err := s.rdb.Get(ctx, key(view)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores a rendered view payload under the configured TTL. Best-effort.
func (s *Store) Set(ctx context.Context, view string, payload []byte) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Set(ctx, key(view), payload, s.ttl).Err()
}

// Invalidate drops every cached view. Called after each successful mutation.
func (s *Store) Invalidate(ctx context.Context) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, key(BooksView), key(LoansView)).Err()
}
