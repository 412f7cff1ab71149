// Package cache implements the read-path availability cache on Redis.
// Values are JSON-encoded under "cache:<name>:<key>" with a per-entry
// TTL.  The cache never owns state: writers invalidate entries, they
// never compute and write fresh values, so the next reader re-derives
// from the database.  All operations are best-effort; failures are
// logged and swallowed and a nil Redis client disables caching
// entirely.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache names.  They mirror the logical caches of the read path; keys
// within a name are event ids, page coordinates or a singleton "all".
const (
	Events                = "events"
	EventsList            = "events-list"
	EventsPaged           = "events-paged"
	AvailableEvents       = "available-events"
	AvailableTicketsCount = "available-tickets-count"
)

// AllNames lists every cache touched by coarse invalidation on the
// write path (reserve and reap).
var AllNames = []string{Events, EventsList, EventsPaged, AvailableEvents, AvailableTicketsCount}

// ListNames lists the caches invalidated when a new event is created.
var ListNames = []string{Events, EventsList, EventsPaged, AvailableEvents}

const prefix = "cache"

// Store wraps a Redis client with the naming and TTL conventions above.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a Store with the given entry TTL.  A nil client is
// allowed and turns every method into a no-op (cache disabled).
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis client is configured.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

func (s *Store) redisKey(name, key string) string {
	return prefix + ":" + name + ":" + key
}

// Get loads a cached entry into dest.  It returns false on miss,
// decode failure or any Redis error.
func (s *Store) Get(ctx context.Context, name, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	bs, err := s.rdb.Get(ctx, s.redisKey(name, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s:%s failed: %v", name, key, err)
		}
		return false
	}
	if err := json.Unmarshal(bs, dest); err != nil {
		log.Printf("cache: decode %s:%s failed: %v", name, key, err)
		return false
	}
	return true
}

// Set stores a value under name/key with the store TTL.
func (s *Store) Set(ctx context.Context, name, key string, v interface{}) {
	if !s.Enabled() {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: encode %s:%s failed: %v", name, key, err)
		return
	}
	if err := s.rdb.SetEx(ctx, s.redisKey(name, key), bs, s.ttl).Err(); err != nil {
		log.Printf("cache: set %s:%s failed: %v", name, key, err)
	}
}

// Invalidate drops every entry of the given cache names.  The write
// path does not track which pages or ids are stale, so whole names are
// cleared.  Keys are discovered with SCAN to avoid blocking Redis on
// large keyspaces.
func (s *Store) Invalidate(ctx context.Context, names ...string) {
	if !s.Enabled() {
		return
	}
	for _, name := range names {
		pattern := s.redisKey(name, "*")
		var cursor uint64
		for {
			keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				log.Printf("cache: scan %s failed: %v", pattern, err)
				break
			}
			if len(keys) > 0 {
				if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
					log.Printf("cache: del %s failed: %v", pattern, err)
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
}
