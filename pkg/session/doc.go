// Package session binds a per-request session to a sealed cookie and, when
// the data does not fit, to a server-side cache keyed by the session id.
//
// # Architecture
//
// A Manager resolves the session at the start of every request and persists
// it before the response header is written. Where the data lives is decided
// at persist time from Config.MaxCookieSize:
//
//	MaxCookieSize == 0          cache only, the cookie carries the id
//	MaxCookieSize == Unbounded  cookie only, the cookie carries the store
//	MaxCookieSize  > 0          hybrid: seal inline, measure, fall back to the cache
//
//	┌────────┐ sealed cookie ┌──────────┐  id → store  ┌───────┐
//	│ Client │ ────────────► │ Manager  │ ───────────► │ Cache │ (memory, redis, postgres)
//	└────────┘               └──────────┘              └───────┘
//
// The cookie payload is JSON: {"id": "...", "store": {...}} inline, or
// {"id": "..."} when the store is cached.
//
// # Usage
//
//	manager, err := session.New(
//	    session.WithPasswords(os.Getenv("SESSION_COOKIE_PASSWORDS")),
//	    session.WithCache(redis.NewCache(client, "session:")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := chi.NewRouter()
//	r.Use(manager.Middleware)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    sess := session.MustFromContext(r.Context())
//	    n, _ := sess.GetInt("visits")
//	    sess.Set("visits", n+1)
//	})
//
// # Flash messages
//
// AddFlash queues a message for the next request. Flash(category) reads and
// removes one category; Flashes returns and clears all of them.
//
// # Lazy mode
//
// With SetLazy(true) values written through LazySet are merged into the
// store at persist time and the session is written on every request. Keys
// starting with "_" are reserved and never persisted from the overlay.
//
// # Errors
//
// Failures wrap the sentinels in errors.go. StatusCode maps them to HTTP
// statuses: ErrCookieUnseal is a 400, everything else a 500.
package session
