package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultReadyTimeout = 500 * time.Millisecond

// Cache is a session cache engine storing each session under KeyPrefix+id
// with a native Redis TTL.
type Cache struct {
	db           redis.UniversalClient
	prefix       string
	readyTimeout time.Duration
	healthcheck  func(context.Context) error
}

// NewCache wraps client. prefix may be empty.
func NewCache(client redis.UniversalClient, prefix string) *Cache {
	return &Cache{
		db:           client,
		prefix:       prefix,
		readyTimeout: defaultReadyTimeout,
		healthcheck:  Healthcheck(client),
	}
}

// NewCacheFromConfig applies KeyPrefix and ReadyTimeout from cfg.
func NewCacheFromConfig(client redis.UniversalClient, cfg Config) *Cache {
	c := NewCache(client, cfg.KeyPrefix)
	if cfg.ReadyTimeout > 0 {
		c.readyTimeout = cfg.ReadyTimeout
	}
	return c
}

// Get returns nil, nil for missing keys (redis.Nil becomes nil).
func (c *Cache) Get(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyKey
	}
	val, err := c.db.Get(ctx, c.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val with expiration. Zero duration means no expiration.
func (c *Cache) Set(ctx context.Context, id string, val []byte, ttl time.Duration) error {
	if id == "" {
		return ErrEmptyKey
	}
	return c.db.Set(ctx, c.prefix+id, val, max(ttl, 0)).Err()
}

// Delete removes the session entry. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyKey
	}
	return c.db.Del(ctx, c.prefix+id).Err()
}

// Ready pings the server with a short timeout.
func (c *Cache) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()
	return c.healthcheck(ctx) == nil
}

// Conn returns the underlying Redis client for advanced operations.
func (c *Cache) Conn() redis.UniversalClient {
	return c.db
}
