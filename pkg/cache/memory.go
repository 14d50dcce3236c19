package cache

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by a Memory cache after Close.
var ErrClosed = errors.New("cache.closed")

// DefaultCapacity bounds a Memory cache created without WithCapacity.
const DefaultCapacity = 10_000

// Memory is an in-process session cache engine backed by an expiring LRU.
// It reports itself not ready once closed.
type Memory struct {
	lru    *LRU[string, []byte]
	closed atomic.Bool
	ticker *time.Ticker
	done   chan struct{}
}

type memoryOptions struct {
	capacity        int
	cleanupInterval time.Duration
	onEvict         func(key string)
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryOptions)

// WithCapacity caps the number of stored sessions; least recently used are evicted first.
func WithCapacity(n int) MemoryOption {
	return func(o *memoryOptions) { o.capacity = n }
}

// WithCleanupInterval runs Purge periodically. Zero disables the background loop.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.cleanupInterval = d }
}

// WithEvictCallback calls fn with the id of every session dropped because
// the cache was full or the entry expired. Explicit deletes are not reported.
// fn runs with the cache lock held and must not call back into the cache.
func WithEvictCallback(fn func(key string)) MemoryOption {
	return func(o *memoryOptions) { o.onEvict = fn }
}

// NewMemory creates a Memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	o := memoryOptions{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory{
		lru:  NewLRU[string, []byte](o.capacity),
		done: make(chan struct{}),
	}
	if o.onEvict != nil {
		m.lru.SetEvictCallback(func(key string, _ []byte) { o.onEvict(key) })
	}

	if o.cleanupInterval > 0 {
		m.ticker = time.NewTicker(o.cleanupInterval)
		go m.cleanupLoop()
	}

	return m
}

// Get returns a copy of the stored value, or nil when the key is missing or expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	val, ok := m.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return slices.Clone(val), nil
}

// Set stores a copy of val. ttl <= 0 keeps it until evicted.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.lru.Put(key, slices.Clone(val), ttl)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.lru.Remove(key)
	return nil
}

// Ready reports false after Close.
func (m *Memory) Ready(context.Context) bool {
	return !m.closed.Load()
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// LRU exposes the underlying cache, mainly to swap the clock in tests.
func (m *Memory) LRU() *LRU[string, []byte] {
	return m.lru
}

// Close stops the cleanup loop and marks the cache as not ready.
func (m *Memory) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
	return nil
}

func (m *Memory) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.lru.Purge()
		case <-m.done:
			return
		}
	}
}
