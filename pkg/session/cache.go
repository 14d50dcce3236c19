package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/hybridsession/pkg/logger"
)

// Cache is the engine holding session stores that do not fit in the cookie.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under id, or nil and no error on a miss.
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// Ready reports whether the engine can serve requests.
	Ready(ctx context.Context) bool
}

// cacheAdapter applies the not-ready policy and JSON encoding on top of an engine
type cacheAdapter struct {
	engine Cache
	ttl    time.Duration
	strict bool
	logger *slog.Logger
}

// load returns the store cached under id. found is false on a miss and on
// a soft-miss caused by an unready engine.
func (a *cacheAdapter) load(ctx context.Context, id string) (store map[string]any, found bool, err error) {
	if !a.engine.Ready(ctx) {
		if a.strict {
			return nil, false, errorf(ErrCacheUnavailable, "cache is not ready")
		}
		a.logger.WarnContext(ctx, "session cache not ready, treating as miss", logger.SessionID(id))
		return nil, false, nil
	}

	raw, err := a.engine.Get(ctx, id)
	if err != nil {
		return nil, false, errors.Join(ErrCacheUnavailable, err)
	}
	if raw == nil {
		return nil, false, nil
	}

	if err := json.Unmarshal(raw, &store); err != nil {
		a.logger.WarnContext(ctx, "discarding undecodable session cache entry",
			logger.SessionID(id),
			logger.Error(err),
		)
		return nil, false, nil
	}
	if store == nil {
		store = make(map[string]any)
	}
	return store, true, nil
}

// save writes store under id. written is false when an unready engine was
// skipped under the soft policy.
func (a *cacheAdapter) save(ctx context.Context, id string, store map[string]any) (written bool, err error) {
	if !a.engine.Ready(ctx) {
		if a.strict {
			return false, errorf(ErrCacheUnavailable, "cache is not ready")
		}
		a.logger.WarnContext(ctx, "session cache not ready, skipping write", logger.SessionID(id))
		return false, nil
	}

	raw, err := json.Marshal(store)
	if err != nil {
		return false, errors.Join(ErrEncoding, err)
	}
	if err := a.engine.Set(ctx, id, raw, a.ttl); err != nil {
		return false, errors.Join(ErrCacheUnavailable, err)
	}
	return true, nil
}

// drop removes the entry for id
func (a *cacheAdapter) drop(ctx context.Context, id string) error {
	if err := a.engine.Delete(ctx, id); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}
	return nil
}
