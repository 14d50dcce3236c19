package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultReadyTimeout = 500 * time.Millisecond

	getQuery = `SELECT data FROM http_sessions
WHERE id = $1 AND (expires_at IS NULL OR expires_at > now())`

	setQuery = `INSERT INTO http_sessions (id, data, expires_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = now()`

	deleteQuery        = `DELETE FROM http_sessions WHERE id = $1`
	deleteExpiredQuery = `DELETE FROM http_sessions WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

// Cache is a session cache engine backed by the http_sessions table.
// Run Migrate once before use.
type Cache struct {
	pool         *pgxpool.Pool
	readyTimeout time.Duration
	healthcheck  func(context.Context) error
}

// NewCache wraps pool.
func NewCache(pool *pgxpool.Pool, cfg Config) *Cache {
	c := &Cache{
		pool:         pool,
		readyTimeout: defaultReadyTimeout,
		healthcheck:  Healthcheck(pool),
	}
	if cfg.ReadyTimeout > 0 {
		c.readyTimeout = cfg.ReadyTimeout
	}
	return c
}

// Get returns nil, nil for missing or expired rows.
func (c *Cache) Get(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyKey
	}

	var data []byte
	if err := c.pool.QueryRow(ctx, getQuery, id).Scan(&data); err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set upserts the row. ttl <= 0 stores it without expiry.
func (c *Cache) Set(ctx context.Context, id string, val []byte, ttl time.Duration) error {
	if id == "" {
		return ErrEmptyKey
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err := c.pool.Exec(ctx, setQuery, id, val, expiresAt)
	return err
}

// Delete removes the row. Missing rows are not an error.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyKey
	}
	_, err := c.pool.Exec(ctx, deleteQuery, id)
	return err
}

// DeleteExpired removes expired rows and returns how many were deleted.
func (c *Cache) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, deleteExpiredQuery)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Ready pings the database with a short timeout.
func (c *Cache) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()
	return c.healthcheck(ctx) == nil
}
