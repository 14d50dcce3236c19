package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hybridsession/pkg/cache"
	"github.com/dmitrymomot/hybridsession/pkg/session"
)

const (
	testPassword    = "a-very-long-test-password-of-32-chars!"
	testOldPassword = "the-previous-password-still-32-chars-long"
	cookieName      = "session"
)

var errEngineDown = errors.New("engine down")

// stubCache wraps a memory engine and counts calls. Readiness and write
// failures are switchable.
type stubCache struct {
	*cache.Memory

	notReady atomic.Bool
	failSet  atomic.Bool

	mu      sync.Mutex
	sets    int
	deletes []string
	lastTTL time.Duration
}

func newStubCache() *stubCache {
	return &stubCache{Memory: cache.NewMemory()}
}

func (c *stubCache) Set(ctx context.Context, id string, value []byte, ttl time.Duration) error {
	if c.failSet.Load() {
		return errEngineDown
	}
	c.mu.Lock()
	c.sets++
	c.lastTTL = ttl
	c.mu.Unlock()
	return c.Memory.Set(ctx, id, value, ttl)
}

func (c *stubCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	c.deletes = append(c.deletes, id)
	c.mu.Unlock()
	return c.Memory.Delete(ctx, id)
}

func (c *stubCache) Ready(ctx context.Context) bool {
	return !c.notReady.Load() && c.Memory.Ready(ctx)
}

func (c *stubCache) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func (c *stubCache) Deletes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deletes...)
}

func newManager(t testing.TB, opts ...session.Option) *session.Manager {
	t.Helper()
	base := []session.Option{session.WithPasswords(testPassword)}
	m, err := session.New(append(base, opts...)...)
	require.NoError(t, err)
	return m
}

// client replays the session cookie across requests like a browser would.
type client struct {
	t       testing.TB
	handler http.Handler
	cookie  *http.Cookie
}

func newClient(t testing.TB, h http.Handler) *client {
	return &client{t: t, handler: h}
}

func (c *client) do(method, target string) *httptest.ResponseRecorder {
	c.t.Helper()
	r := httptest.NewRequest(method, target, nil)
	if c.cookie != nil {
		r.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)
	if sc := sessionCookie(w); sc != nil {
		c.cookie = sc
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target)
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

// resolve returns a fresh session outside of the middleware
func resolve(t testing.TB, m *session.Manager) *session.Session {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := m.Resolve(r.Context(), r)
	require.NoError(t, err)
	return sess
}

// handle mounts fn behind the session middleware
func handle(m *session.Manager, fn func(w http.ResponseWriter, r *http.Request, sess *session.Session)) http.Handler {
	return m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, session.MustFromContext(r.Context()))
	}))
}
