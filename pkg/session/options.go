package session

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig replaces the whole configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithPasswords sets the cookie sealing passwords
func WithPasswords(passwords ...string) Option {
	return func(m *Manager) {
		m.config.Passwords = passwords
	}
}

// WithMaxCookieSize sets the inline storage bound (0, Unbounded or a positive size)
func WithMaxCookieSize(size int) Option {
	return func(m *Manager) {
		m.config.MaxCookieSize = size
	}
}

// WithSecure toggles the Secure cookie flag
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.config.IsSecure = secure
	}
}

// WithIgnoreErrors toggles the fresh-session fallback for unreadable cookies
func WithIgnoreErrors(ignore bool) Option {
	return func(m *Manager) {
		m.config.IgnoreErrors = ignore
	}
}

// WithCacheExpiresIn sets the TTL of cache entries
func WithCacheExpiresIn(ttl time.Duration) Option {
	return func(m *Manager) {
		m.config.CacheExpiresIn = ttl
	}
}

// WithStoreBlank toggles persistence of sessions without data
func WithStoreBlank(store bool) Option {
	return func(m *Manager) {
		m.config.StoreBlank = store
	}
}

// WithErrorOnCacheNotReady toggles failing requests on an unready cache
func WithErrorOnCacheNotReady(fail bool) Option {
	return func(m *Manager) {
		m.config.ErrorOnCacheNotReady = fail
	}
}

// WithCache sets the cache engine. An in-memory engine is used when omitted.
func WithCache(c Cache) Option {
	return func(m *Manager) {
		m.engine = c
		m.engineSet = true
	}
}

// WithIDGenerator sets a custom session ID generator
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) {
		m.idgen = g
		m.idgenSet = true
	}
}

// WithSkipper sets the predicate that disables session handling for a request
func WithSkipper(s Skipper) Option {
	return func(m *Manager) {
		m.skipper = s
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithErrorHandler sets how session failures are rendered by the middleware
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithMetrics registers session counters with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.registerer = reg
	}
}
