package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie manager configuration
type Config struct {
	Passwords string        `env:"COOKIE_PASSWORDS" envDefault:""`
	Path      string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain    string        `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge    int           `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure    bool          `env:"COOKIE_SECURE" envDefault:"true"`
	HttpOnly  bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite  http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // 2 = SameSiteLaxMode
}

// DefaultConfig returns default cookie configuration
func DefaultConfig() Config {
	return Config{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SplitPasswords splits a comma separated password list, trimming blanks.
func SplitPasswords(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	passwords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			passwords = append(passwords, p)
		}
	}

	return passwords
}

// NewFromConfig builds a Codec from cfg.Passwords and a Manager using it.
// Only non-zero values from the config are applied.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	codec, err := NewCodec(SplitPasswords(cfg.Passwords))
	if err != nil {
		return nil, err
	}

	configOpts := make([]Option, 0, 6)

	if cfg.Path != "" {
		configOpts = append(configOpts, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		configOpts = append(configOpts, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		configOpts = append(configOpts, WithMaxAge(cfg.MaxAge))
	}
	configOpts = append(configOpts, WithSecure(cfg.Secure), WithHTTPOnly(cfg.HttpOnly))
	if cfg.SameSite != 0 {
		configOpts = append(configOpts, WithSameSite(cfg.SameSite))
	}

	configOpts = append(configOpts, opts...)

	return New(codec, configOpts...), nil
}
