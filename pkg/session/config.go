package session

import "time"

// Unbounded disables the cookie size limit: the whole store always lives in the cookie.
const Unbounded = -1

// Config holds session configuration
type Config struct {
	// CookieName is the name of the session cookie (default: "session")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session"`

	// MaxCookieSize bounds the sealed cookie length in bytes.
	// 0 keeps every store in the cache, Unbounded keeps every store in the
	// cookie, a positive value stores inline when it fits and falls back to
	// the cache otherwise.
	MaxCookieSize int `env:"SESSION_MAX_COOKIE_SIZE" envDefault:"1024"`

	// Passwords seal the cookie; the first one seals, all of them unseal.
	Passwords []string `env:"SESSION_COOKIE_PASSWORDS" envSeparator:","`

	// IsSecure sets the Secure flag on the session cookie
	IsSecure bool `env:"SESSION_COOKIE_SECURE" envDefault:"true"`

	// IgnoreErrors issues a fresh session for an unreadable cookie instead of failing with 400
	IgnoreErrors bool `env:"SESSION_COOKIE_IGNORE_ERRORS" envDefault:"true"`

	CookiePath   string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain string `env:"SESSION_COOKIE_DOMAIN"`

	// CookieTTL sets Max-Age on the cookie; zero keeps a browser-session cookie
	CookieTTL time.Duration `env:"SESSION_COOKIE_TTL" envDefault:"0s"`

	// CacheExpiresIn is the TTL of cache entries
	CacheExpiresIn time.Duration `env:"SESSION_CACHE_EXPIRES_IN" envDefault:"24h"`

	// StoreBlank persists sessions that carry no data
	StoreBlank bool `env:"SESSION_STORE_BLANK" envDefault:"true"`

	// ErrorOnCacheNotReady fails requests when the cache is not ready.
	// When false an unready cache is a soft miss on read and a skipped write on persist.
	ErrorOnCacheNotReady bool `env:"SESSION_ERROR_ON_CACHE_NOT_READY" envDefault:"true"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:           "session",
		MaxCookieSize:        1024,
		IsSecure:             true,
		IgnoreErrors:         true,
		CookiePath:           "/",
		CacheExpiresIn:       24 * time.Hour,
		StoreBlank:           true,
		ErrorOnCacheNotReady: true,
	}
}

// NewFromConfig creates a new Manager from the provided Config.
// Options are applied after the config, so they take precedence.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

func (c Config) validate() error {
	switch {
	case c.CookieName == "":
		return errorf(ErrInvalidConfig, "cookie name is empty")
	case c.MaxCookieSize < Unbounded:
		return errorf(ErrInvalidConfig, "max cookie size %d is out of range", c.MaxCookieSize)
	case c.CacheExpiresIn < 0:
		return errorf(ErrInvalidConfig, "cache ttl must not be negative")
	case c.CookieTTL < 0:
		return errorf(ErrInvalidConfig, "cookie ttl must not be negative")
	}
	return nil
}
