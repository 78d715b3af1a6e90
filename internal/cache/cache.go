// Package cache provides a small Redis-backed store for read-only
// collaborator lookups. A nil *Store is valid and behaves as a cache that
// always misses, so callers need no branching when Redis is not configured.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches string payloads under versioned keys with a fixed TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a store writing to rdb with the given TTL.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Get returns the cached payload for key, if present.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	if s == nil || s.rdb == nil {
		return "", false
	}
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("WARNING: cache read for %s failed: %v", key, err)
		return "", false
	}
	return val, true
}

// Set stores a payload under key. Failures are logged and ignored; a broken
// cache must not fail the lookup it was meant to speed up.
func (s *Store) Set(ctx context.Context, key, value string) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		log.Printf("WARNING: cache write for %s failed: %v", key, err)
	}
}
