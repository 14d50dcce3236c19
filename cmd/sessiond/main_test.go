package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hybridsession/pkg/logger"
	"github.com/dmitrymomot/hybridsession/pkg/session"
)

const testPassword = "sessiond-test-password-at-least-32-chars"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine, probe, closeCache, err := openCache(context.Background(), appConfig{CacheBackend: "memory"}, reg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(closeCache)

	manager, err := session.New(
		session.WithPasswords(testPassword),
		session.WithSecure(false),
		session.WithMaxCookieSize(0),
		session.WithCache(engine),
		session.WithMetrics(reg),
		session.WithSkipper(session.SkipPaths("/favicon.ico")),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(manager, "admin-token", reg, probe, logger.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (b *browser) do(method, path string, form url.Values) *http.Response {
	b.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	c := srv.Client()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c.Jar = jar
	return &browser{t: t, base: srv.URL, client: c}
}

func TestRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	b := newBrowser(t, srv)

	first := decodeJSON(t, b.do(http.MethodGet, "/", nil))
	second := decodeJSON(t, b.do(http.MethodGet, "/", nil))
	assert.Equal(t, float64(1), first["visits"])
	assert.Equal(t, float64(2), second["visits"])
	assert.Equal(t, first["id"], second["id"])

	resp := b.do(http.MethodPost, "/flash", url.Values{"category": {"info"}, "message": {"hello"}, "accumulate": {"true"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, map[string]any{"info": []any{"hello"}}, decodeJSON(t, b.do(http.MethodGet, "/flash", nil)))
	assert.Empty(t, decodeJSON(t, b.do(http.MethodGet, "/flash", nil)))

	reset := decodeJSON(t, b.do(http.MethodPost, "/reset", nil))
	assert.NotEqual(t, first["id"], reset["id"])
	assert.Equal(t, float64(1), decodeJSON(t, b.do(http.MethodGet, "/", nil))["visits"])

	skipped := b.do(http.MethodGet, "/favicon.ico", nil)
	assert.Empty(t, skipped.Header.Values("Set-Cookie"))
}

func TestAdminRequiresToken(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	b := newBrowser(t, srv)

	id, _ := decodeJSON(t, b.do(http.MethodGet, "/", nil))["id"].(string)
	require.NotEmpty(t, id)

	resp := b.do(http.MethodDelete, "/admin/sessions/"+id, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/sessions/"+id, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, float64(1), decodeJSON(t, b.do(http.MethodGet, "/", nil))["visits"])
}

func TestProbesAndMetrics(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	b := newBrowser(t, srv)

	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/healthz", nil).StatusCode)
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/readyz", nil).StatusCode)

	b.do(http.MethodGet, "/", nil)
	resp := b.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "session_cache_evictions_total 0")
	assert.Contains(t, string(body), `session_resolved_total{source="new"}`)
}

func TestOpenCache_UnknownBackend(t *testing.T) {
	t.Parallel()
	_, _, _, err := openCache(context.Background(), appConfig{CacheBackend: "etcd"}, prometheus.NewRegistry(), logger.Discard())
	assert.Error(t, err)
}
