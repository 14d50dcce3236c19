// Command sessiond is a reference server for the session manager. It reads
// its configuration from the environment (and an optional .env file),
// selects a cache backend and serves a few demo routes plus the admin and
// metrics endpoints.
package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/hybridsession/pkg/cache"
	"github.com/dmitrymomot/hybridsession/pkg/config"
	"github.com/dmitrymomot/hybridsession/pkg/httpserver"
	"github.com/dmitrymomot/hybridsession/pkg/logger"
	"github.com/dmitrymomot/hybridsession/pkg/pg"
	"github.com/dmitrymomot/hybridsession/pkg/redis"
	"github.com/dmitrymomot/hybridsession/pkg/session"
)

type appConfig struct {
	CacheBackend      string        `env:"SESSION_CACHE_BACKEND" envDefault:"memory"`
	AdminToken        string        `env:"SESSION_ADMIN_TOKEN"`
	PGCleanupInterval time.Duration `env:"PG_CLEANUP_INTERVAL" envDefault:"10m"`

	Log     logger.Config
	HTTP    httpserver.Config
	Session session.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Log, logger.WithContextExtractors(requestIDAttr, session.LogAttr))
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, probe, closeCache, err := openCache(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	manager, err := session.NewFromConfig(cfg.Session,
		session.WithCache(engine),
		session.WithLogger(log),
		session.WithMetrics(reg),
		session.WithSkipper(session.SkipPaths("/favicon.ico", "/static/*")),
	)
	if err != nil {
		return err
	}

	router := newRouter(manager, cfg.AdminToken, reg, probe, log)

	log.InfoContext(ctx, "starting sessiond",
		slog.String("cache", cfg.CacheBackend),
		slog.Int("max_cookie_size", cfg.Session.MaxCookieSize),
	)
	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, router)
}

func newRouter(manager *session.Manager, adminToken string, reg *prometheus.Registry, probe httpserver.Probe, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, probe))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if adminToken != "" {
		r.Route("/admin/sessions", func(r chi.Router) {
			r.Use(requireToken(adminToken))
			r.Mount("/", manager.AdminRoutes())
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(manager.Middleware)
		r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
		r.Get("/", visits)
		r.Get("/flash", readFlash)
		r.Post("/flash", writeFlash)
		r.Post("/reset", reset)
	})

	return r
}

// openCache connects the configured cache engine and returns its readiness
// probe and a release func.
func openCache(ctx context.Context, cfg appConfig, reg prometheus.Registerer, log *slog.Logger) (session.Cache, httpserver.Probe, func(), error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "", "memory":
		evictions := promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "session_cache_evictions_total",
			Help: "Sessions dropped by the in-memory cache because it was full or the entry expired.",
		})
		engine := cache.NewMemory(
			cache.WithCleanupInterval(time.Minute),
			cache.WithEvictCallback(func(string) { evictions.Inc() }),
		)
		probe := func(ctx context.Context) error {
			if !engine.Ready(ctx) {
				return cache.ErrClosed
			}
			return nil
		}
		return engine, probe, func() { _ = engine.Close() }, nil

	case "redis":
		rcfg, err := config.Load[redis.Config]()
		if err != nil {
			return nil, nil, nil, err
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return redis.NewCacheFromConfig(client, rcfg), redis.Healthcheck(client), func() { _ = client.Close() }, nil

	case "postgres", "pg":
		pcfg, err := config.Load[pg.Config]()
		if err != nil {
			return nil, nil, nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, pcfg, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}

		engine := pg.NewCache(pool, pcfg)
		cleanupCtx, stop := context.WithCancel(ctx)
		go purgeExpired(cleanupCtx, engine, cfg.PGCleanupInterval, log)

		return engine, pg.Healthcheck(pool), func() { stop(); pool.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown session cache backend %q", cfg.CacheBackend)
	}
}

func purgeExpired(ctx context.Context, engine *pg.Cache, every time.Duration, log *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := engine.DeleteExpired(ctx)
			if err != nil {
				log.ErrorContext(ctx, "failed to purge expired sessions", logger.Error(err))
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "purged expired sessions", slog.Int64("count", n))
			}
		}
	}
}

func requestIDAttr(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	return logger.RequestID(id), id != ""
}

func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func visits(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	n, _ := sess.GetInt("visits")
	if _, err := sess.Set("visits", n+1); err != nil {
		return
	}
	writeJSON(w, map[string]any{"id": sess.ID(), "visits": n + 1})
}

func readFlash(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	if category := r.URL.Query().Get("category"); category != "" {
		writeJSON(w, map[string]any{category: sess.Flash(category)})
		return
	}
	writeJSON(w, sess.Flashes())
}

func writeFlash(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	category := r.FormValue("category")
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}
	accumulate, _ := strconv.ParseBool(r.FormValue("accumulate"))
	sess.AddFlash(category, r.FormValue("message"), accumulate)
	w.WriteHeader(http.StatusNoContent)
}

func reset(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	if err := sess.Reset(); err != nil {
		return
	}
	writeJSON(w, map[string]any{"id": sess.ID()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", logger.Error(err))
	}
}
