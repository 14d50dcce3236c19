package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hybridsession/pkg/cookie"
)

func newManager(t *testing.T, opts ...cookie.Option) *cookie.Manager {
	t.Helper()
	codec, err := cookie.NewCodec([]string{testPassword})
	require.NoError(t, err)
	return cookie.New(codec, opts...)
}

func TestManager_SetGet(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	m.Set(w, "plain", "hello=world&foo=bar")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	got, err := m.Get(r, "plain")
	require.NoError(t, err)
	assert.Equal(t, "hello=world&foo=bar", got)

	_, err = m.Get(r, "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_SetGetSealed(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetSealed(w, "session", []byte(`{"id":"abc"}`)))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotContains(t, cookies[0].Value, "abc")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	payload, err := m.GetSealed(r, "session")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(payload))
}

func TestManager_SealedWithoutCodec(t *testing.T) {
	t.Parallel()
	m := cookie.New(nil)

	err := m.SetSealed(httptest.NewRecorder(), "session", []byte("x"))
	assert.ErrorIs(t, err, cookie.ErrNoCodec)

	_, err = m.GetSealed(httptest.NewRequest(http.MethodGet, "/", nil), "session")
	assert.ErrorIs(t, err, cookie.ErrNoCodec)
}

func TestManager_DefaultAttributes(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	m.Set(w, "test", "value")

	header := w.Header().Get("Set-Cookie")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "SameSite=Lax")
	assert.Contains(t, header, "Path=/")
	assert.NotContains(t, header, "Secure")
}

func TestManager_Options(t *testing.T) {
	t.Parallel()
	m := newManager(t, cookie.WithSecure(true), cookie.WithDomain("example.com"))

	t.Run("defaults from constructor", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Set(w, "test", "value")

		c := w.Result().Cookies()[0]
		assert.True(t, c.Secure)
		assert.Equal(t, "example.com", c.Domain)
	})

	t.Run("per call override", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Set(w, "test", "value",
			cookie.WithSecure(false),
			cookie.WithPath("/admin"),
			cookie.WithMaxAge(3600),
			cookie.WithHTTPOnly(false),
			cookie.WithSameSite(http.SameSiteStrictMode),
		)

		c := w.Result().Cookies()[0]
		assert.False(t, c.Secure)
		assert.False(t, c.HttpOnly)
		assert.Equal(t, "/admin", c.Path)
		assert.Equal(t, 3600, c.MaxAge)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	})

	t.Run("override does not leak into defaults", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Set(w, "test", "value")
		assert.Equal(t, "/", w.Result().Cookies()[0].Path)
	})
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()
	m := newManager(t, cookie.WithSecure(true))

	w := httptest.NewRecorder()
	m.Delete(w, "session")

	c := w.Result().Cookies()[0]
	assert.Equal(t, "session", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.Secure)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("requires passwords", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.NewFromConfig(cookie.DefaultConfig())
		assert.ErrorIs(t, err, cookie.ErrNoPassword)
	})

	t.Run("applies attributes", func(t *testing.T) {
		t.Parallel()
		cfg := cookie.DefaultConfig()
		cfg.Passwords = " " + testPassword + " , " + testOldPassword + ","
		cfg.Domain = "example.com"

		m, err := cookie.NewFromConfig(cfg)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.SetSealed(w, "session", []byte("x")))

		c := w.Result().Cookies()[0]
		assert.True(t, c.Secure)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "example.com", c.Domain)
	})
}

func TestSplitPasswords(t *testing.T) {
	t.Parallel()
	assert.Nil(t, cookie.SplitPasswords(""))
	assert.Equal(t, []string{"a", "b"}, cookie.SplitPasswords(" a, ,b ,"))
}
