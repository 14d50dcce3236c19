package cookie

import (
	"errors"
	"net/http"
	"time"
)

// Manager writes and reads cookies with shared default attributes.
// Sealed helpers require a Codec.
type Manager struct {
	codec    *Codec
	defaults Options
}

// New creates a cookie manager. codec may be nil when only plain cookies are used.
func New(codec *Codec, opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		codec:    codec,
		defaults: applyOptions(defaults, opts),
	}
}

// Codec returns the codec the manager seals with.
func (m *Manager) Codec() *Codec {
	return m.codec
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
		Secure:   options.Secure,
	})
}

// SetSealed seals payload and writes it as the cookie value.
func (m *Manager) SetSealed(w http.ResponseWriter, name string, payload []byte, opts ...Option) error {
	if m.codec == nil {
		return ErrNoCodec
	}

	sealed, err := m.codec.Seal(name, payload)
	if err != nil {
		return err
	}

	m.Set(w, name, sealed, opts...)
	return nil
}

// GetSealed reads and unseals the named cookie.
func (m *Manager) GetSealed(r *http.Request, name string) ([]byte, error) {
	if m.codec == nil {
		return nil, ErrNoCodec
	}

	value, err := m.Get(r, name)
	if err != nil {
		return nil, err
	}

	return m.codec.Unseal(name, value)
}
