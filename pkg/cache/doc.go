// Package cache provides the in-process session cache engine.
//
// LRU is a generic, thread-safe least-recently-used cache whose entries may
// carry a time-to-live. Expired entries are dropped lazily on Get and in bulk
// by Purge. Memory wraps an LRU of byte slices and exposes the
// Get/Set/Delete/Ready contract expected by the session manager:
//
//	engine := cache.NewMemory(
//	    cache.WithCapacity(50_000),
//	    cache.WithCleanupInterval(time.Minute),
//	)
//	defer engine.Close()
//
//	manager, err := session.New(
//	    session.WithPasswords(password),
//	    session.WithCache(engine),
//	)
//
// Get returns (nil, nil) for a missing or expired key. After Close the engine
// reports Ready() == false and every operation fails with ErrClosed, which is
// how a stopped cache looks to the session manager.
package cache
