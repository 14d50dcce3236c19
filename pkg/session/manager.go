package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/hybridsession/pkg/cache"
	"github.com/dmitrymomot/hybridsession/pkg/cookie"
	"github.com/dmitrymomot/hybridsession/pkg/logger"
)

// Manager resolves the session of every request from its cookie and writes
// it back to the cookie, the cache, or both.
type Manager struct {
	config Config

	engine    Cache
	engineSet bool
	idgen     IDGenerator
	idgenSet  bool

	skipper      Skipper
	logger       *slog.Logger
	errorHandler ErrorHandler
	registerer   prometheus.Registerer

	cookies *cookie.Manager
	cache   *cacheAdapter
	metrics *metrics
}

// New creates a session manager. Passwords are required; an in-memory cache
// and the random id generator are used unless configured otherwise.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config:       DefaultConfig(),
		logger:       logger.Discard(),
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.config.validate(); err != nil {
		return nil, err
	}

	codec, err := cookie.NewCodec(m.config.Passwords)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	if m.idgenSet && isNil(m.idgen) {
		return nil, errorf(ErrInvalidConfig, "id generator is not callable")
	}
	if m.idgen == nil {
		m.idgen = RandomIDGenerator{}
	}
	m.idgen = validatingGenerator{next: m.idgen}

	if m.engineSet && isNil(m.engine) {
		return nil, errorf(ErrInvalidConfig, "cache engine is nil")
	}
	if m.engine == nil {
		m.engine = cache.NewMemory()
	}

	cookieOpts := []cookie.Option{
		cookie.WithPath(m.config.CookiePath),
		cookie.WithDomain(m.config.CookieDomain),
		cookie.WithSecure(m.config.IsSecure),
	}
	if m.config.CookieTTL > 0 {
		cookieOpts = append(cookieOpts, cookie.WithMaxAge(int(m.config.CookieTTL/time.Second)))
	}
	m.cookies = cookie.New(codec, cookieOpts...)

	m.cache = &cacheAdapter{
		engine: m.engine,
		ttl:    m.config.CacheExpiresIn,
		strict: m.config.ErrorOnCacheNotReady,
		logger: m.logger,
	}
	m.metrics = newMetrics(m.registerer)

	return m, nil
}

// Config returns the effective configuration
func (m *Manager) Config() Config {
	return m.config
}

// Resolve loads the session referenced by the request cookie, or issues a
// new one when the cookie is absent or, with IgnoreErrors, unreadable.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	raw, err := m.cookies.GetSealed(r, m.config.CookieName)
	if errors.Is(err, cookie.ErrCookieNotFound) {
		return m.issue(ctx, r)
	}
	if err != nil {
		return m.unreadable(ctx, r, errors.Join(ErrCookieUnseal, err))
	}

	p, store, err := decodePayload(raw)
	if err != nil {
		return m.unreadable(ctx, r, err)
	}

	if p.inline() {
		m.metrics.resolve(sourceCookie)
		return newSession(r, m.idgen, p.ID, store), nil
	}

	store, found, err := m.cache.load(ctx, p.ID)
	if err != nil {
		m.metrics.fail(err)
		return nil, err
	}

	s := newSession(r, m.idgen, p.ID, store)
	s.cached = true
	if found {
		m.metrics.resolve(sourceCache)
	} else {
		m.metrics.resolve(sourceMiss)
		m.logger.DebugContext(ctx, "session cache miss, keeping id", logger.SessionID(p.ID))
	}
	return s, nil
}

func (m *Manager) issue(ctx context.Context, r *http.Request) (*Session, error) {
	id, err := m.idgen.Generate(r)
	if err != nil {
		m.metrics.fail(err)
		return nil, err
	}

	s := newSession(r, m.idgen, id, nil)
	s.isNew = true
	s.dirty = true
	m.metrics.resolve(sourceNew)
	return s, nil
}

func (m *Manager) unreadable(ctx context.Context, r *http.Request, err error) (*Session, error) {
	if !m.config.IgnoreErrors {
		m.metrics.fail(err)
		return nil, err
	}
	m.logger.DebugContext(ctx, "ignoring unreadable session cookie", logger.Error(err))
	return m.issue(ctx, r)
}

// Persist writes the session to the response. It must run before the
// response header is written. Clean sessions are left alone unless lazy;
// a done request context abandons persistence without writing anything.
func (m *Manager) Persist(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s == nil {
		return nil
	}
	if s.err != nil {
		m.metrics.fail(s.err)
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.dirty && !s.lazy {
		return nil
	}
	if !m.config.StoreBlank && s.isNew && s.blank() {
		m.metrics.persist(placementSkipped)
		return nil
	}

	for _, id := range s.stale {
		if err := m.cache.drop(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "failed to drop replaced session", logger.SessionID(id), logger.Error(err))
		}
	}
	s.stale = nil

	if err := m.place(ctx, w, s); err != nil {
		m.metrics.fail(err)
		return err
	}
	s.dirty = false
	return nil
}

// place seals the store inline when the size policy allows it and falls
// back to the cache with an id-only cookie otherwise.
func (m *Manager) place(ctx context.Context, w http.ResponseWriter, s *Session) error {
	store := s.snapshot()

	if m.config.MaxCookieSize != 0 {
		body, err := encodeInline(s.id, store)
		if err != nil {
			return err
		}
		sealed, err := m.cookies.Codec().Seal(m.config.CookieName, body)
		if err != nil {
			return err
		}

		if m.config.MaxCookieSize == Unbounded || len(sealed) <= m.config.MaxCookieSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.cached {
				if err := m.cache.drop(ctx, s.id); err != nil {
					m.logger.WarnContext(ctx, "failed to drop cached session moved inline", logger.SessionID(s.id), logger.Error(err))
				}
				s.cached = false
			}
			m.cookies.Set(w, m.config.CookieName, sealed)
			m.metrics.persist(placementCookie)
			return nil
		}
	}

	written, err := m.cache.save(ctx, s.id, store)
	if err != nil {
		return err
	}
	if !written {
		m.metrics.persist(placementSkipped)
		return nil
	}
	s.cached = true

	body, err := encodeID(s.id)
	if err != nil {
		return err
	}
	if err := m.cookies.SetSealed(w, m.config.CookieName, body); err != nil {
		return err
	}
	m.metrics.persist(placementCache)
	return nil
}

// Revoke removes the cache entry of the session id. Cookies already issued
// for it keep resolving to the same id with an empty store.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	err := ValidateID(id)
	if err == nil {
		err = m.cache.drop(ctx, id)
	}
	if err != nil {
		err = errors.Join(ErrRevocation, err)
		m.metrics.fail(err)
		return err
	}

	m.metrics.revoke()
	m.logger.InfoContext(ctx, "session revoked", logger.SessionID(id))
	return nil
}
