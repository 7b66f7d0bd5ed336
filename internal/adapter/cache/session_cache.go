// Package cache provides a Redis-backed read-through cache for sessions.
// Storage remains the source of truth; every cache failure is reported
// to the caller, who treats it as a miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

const keyPrefix = "session:"

// SessionCache stores serialized sessions with a TTL.
type SessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New constructs a SessionCache over an existing Redis client.
func New(rdb *redis.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionCache{rdb: rdb, ttl: ttl}
}

// Put serializes and stores the session under its id.
func (c *SessionCache) Put(ctx domain.Context, s domain.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("op=cache.put: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+s.ID, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.put: %w", err)
	}
	return nil
}

// Get returns the cached session and whether it was present.
func (c *SessionCache) Get(ctx domain.Context, id string) (domain.Session, bool, error) {
	b, err := c.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("op=cache.get: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Session{}, false, fmt.Errorf("op=cache.get: %w", err)
	}
	return s, true, nil
}

// Invalidate removes the cached session, if any.
func (c *SessionCache) Invalidate(ctx domain.Context, id string) error {
	if err := c.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("op=cache.invalidate: %w", err)
	}
	return nil
}

// Noop is the cache used when Redis is not configured.
type Noop struct{}

func (Noop) Put(domain.Context, domain.Session) error { return nil }

func (Noop) Get(domain.Context, string) (domain.Session, bool, error) {
	return domain.Session{}, false, nil
}

func (Noop) Invalidate(domain.Context, string) error { return nil }

var (
	_ domain.SessionCache = (*SessionCache)(nil)
	_ domain.SessionCache = Noop{}
)
