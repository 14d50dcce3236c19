package session

import (
	"maps"
	"net/http"
	"strings"
)

// Reserved store keys. Keys starting with reservedPrefix cannot be written
// through Set and are never swept from the lazy overlay.
const (
	reservedPrefix = "_"
	flashKey       = "_flash"
	lazyKey        = "_lazy"
)

// Session is the per-request session state. It is owned by a single request
// and is not safe for concurrent use.
type Session struct {
	id      string
	store   map[string]any
	overlay map[string]any
	lazy    bool
	dirty   bool
	isNew   bool

	// cached is true when the store was read from (or bound to) a cache entry.
	cached bool
	// stale holds ids replaced by Reset whose cache entries are dropped on persist.
	stale []string
	// err is the first fatal error raised by a mutator; it fails persistence.
	err error
	// rev counts mutations and failures; the middleware compares it to
	// detect changes made after the session was written.
	rev uint64

	req   *http.Request
	idgen IDGenerator
}

func newSession(r *http.Request, idgen IDGenerator, id string, store map[string]any) *Session {
	if store == nil {
		store = make(map[string]any)
	}
	s := &Session{
		id:      id,
		store:   store,
		overlay: make(map[string]any),
		req:     r,
		idgen:   idgen,
	}
	if v, ok := store[lazyKey].(bool); ok && v {
		s.lazy = true
	}
	delete(s.store, lazyKey)
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session was issued during this request
func (s *Session) IsNew() bool {
	return s.isNew
}

// IsDirty reports whether the session changed since it was loaded
func (s *Session) IsDirty() bool {
	return s.dirty
}

// Err returns the first fatal error raised by a mutator, if any
func (s *Session) Err() error {
	return s.err
}

// Get returns the value stored under key or nil.
// In lazy mode overlay values take precedence.
func (s *Session) Get(key string) any {
	if s.lazy {
		if v, ok := s.overlay[key]; ok {
			return v
		}
	}
	return s.store[key]
}

// Pop returns the value stored under key and removes it
func (s *Session) Pop(key string) any {
	v := s.Get(key)
	s.Clear(key)
	return v
}

// GetString retrieves a string value from session data
func (s *Session) GetString(key string) (string, bool) {
	str, ok := s.Get(key).(string)
	return str, ok
}

// GetInt retrieves an int value from session data.
// Values decoded from JSON arrive as float64 and are converted.
func (s *Session) GetInt(key string) (int, bool) {
	switch v := s.Get(key).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data
func (s *Session) GetBool(key string) (bool, bool) {
	b, ok := s.Get(key).(bool)
	return b, ok
}

// Set stores value under key and returns it.
// An empty or reserved key fails the request at persist time.
func (s *Session) Set(key string, value any) (any, error) {
	if err := validKey(key); err != nil {
		return nil, s.fail(err)
	}
	s.store[key] = value
	delete(s.overlay, key)
	s.markDirty()
	return value, nil
}

// SetMany merges values into the store and returns them.
// The whole call is rejected when any key is invalid.
func (s *Session) SetMany(values map[string]any) (map[string]any, error) {
	if values == nil {
		return nil, s.fail(errorf(ErrInvalidArgument, "values map is nil"))
	}
	for key := range values {
		if err := validKey(key); err != nil {
			return nil, s.fail(err)
		}
	}
	for key, value := range values {
		s.store[key] = value
		delete(s.overlay, key)
	}
	s.markDirty()
	return values, nil
}

// Clear removes key from the session. Missing keys are a no-op.
func (s *Session) Clear(key string) {
	_, inStore := s.store[key]
	_, inOverlay := s.overlay[key]
	if !inStore && !inOverlay {
		return
	}
	delete(s.store, key)
	delete(s.overlay, key)
	s.markDirty()
}

// Touch marks the session dirty so it is written again
func (s *Session) Touch() {
	s.markDirty()
}

// Reset discards the store and binds the session to a freshly generated id.
// The cache entry of the previous id is dropped when the session is persisted.
func (s *Session) Reset() error {
	id, err := s.idgen.Generate(s.req)
	if err != nil {
		return s.fail(err)
	}
	if s.cached && s.id != "" {
		s.stale = append(s.stale, s.id)
	}
	s.id = id
	s.store = make(map[string]any)
	s.overlay = make(map[string]any)
	s.cached = false
	s.markDirty()
	return nil
}

// SetLazy toggles lazy mode. In lazy mode the overlay written through
// LazySet is merged into the store on persist and the session is always
// written, the flag itself included.
func (s *Session) SetLazy(enabled bool) {
	if s.lazy != enabled {
		s.markDirty()
	}
	s.lazy = enabled
}

// IsLazy reports whether lazy mode is on
func (s *Session) IsLazy() bool {
	return s.lazy
}

// LazySet records an ad-hoc value in the overlay. Reserved keys are kept
// for the duration of the request only.
func (s *Session) LazySet(key string, value any) {
	s.overlay[key] = value
	s.markDirty()
}

// LazyGet returns an overlay value, falling back to the store
func (s *Session) LazyGet(key string) (any, bool) {
	if v, ok := s.overlay[key]; ok {
		return v, true
	}
	v, ok := s.store[key]
	return v, ok
}

// LazyDelete removes key from both the overlay and the store
func (s *Session) LazyDelete(key string) {
	s.Clear(key)
}

// Lazy returns a copy of the ad-hoc overlay
func (s *Session) Lazy() map[string]any {
	return maps.Clone(s.overlay)
}

// Store returns a copy of the data that would be persisted right now
func (s *Session) Store() map[string]any {
	out := maps.Clone(s.store)
	if s.lazy {
		for k, v := range s.overlay {
			if !strings.HasPrefix(k, reservedPrefix) {
				out[k] = v
			}
		}
	}
	return out
}

// snapshot builds the persisted document: store, swept overlay and lazy flag.
func (s *Session) snapshot() map[string]any {
	out := s.Store()
	if s.lazy {
		out[lazyKey] = true
	}
	return out
}

// blank reports whether the session carries no user data
func (s *Session) blank() bool {
	return len(s.Store()) == 0
}

func (s *Session) markDirty() {
	s.dirty = true
	s.rev++
}

func (s *Session) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	s.rev++
	return err
}

func validKey(key string) error {
	switch {
	case key == "":
		return errorf(ErrInvalidArgument, "key is empty")
	case strings.HasPrefix(key, reservedPrefix):
		return errorf(ErrInvalidArgument, "key %q uses the reserved prefix %q", key, reservedPrefix)
	}
	return nil
}
