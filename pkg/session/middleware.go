package session

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/dmitrymomot/hybridsession/pkg/logger"
)

// Skipper reports whether session handling is disabled for the request
type Skipper func(r *http.Request) bool

// SkipPaths returns a Skipper matching the request path against path.Match patterns
func SkipPaths(patterns ...string) Skipper {
	return func(r *http.Request) bool {
		for _, p := range patterns {
			if ok, _ := path.Match(p, r.URL.Path); ok {
				return true
			}
		}
		return false
	}
}

// ErrorHandler renders a session failure
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler writes the status text of StatusCode(err)
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := StatusCode(err)
	http.Error(w, http.StatusText(code), code)
}

// Middleware resolves the session before next runs and persists it before
// the response header is written. Session failures short-circuit the
// handler, or replace its output when they happen at persist time.
//
// Once the handler has written a header or body byte the session is final:
// later changes are not persisted and are logged at error level with
// ErrModifiedAfterWrite.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipper != nil && m.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.Resolve(r.Context(), r)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to resolve session", logger.Error(err))
			m.errorHandler(w, r, err)
			return
		}

		sw := &responseWriter{ResponseWriter: w, manager: m, req: r, sess: sess}
		next.ServeHTTP(sw, r.WithContext(WithSession(r.Context(), sess)))
		if sw.persisted {
			sw.reportLateChanges()
			return
		}
		sw.persist()
	})
}

// responseWriter persists the session on the first header or body write
type responseWriter struct {
	http.ResponseWriter
	manager   *Manager
	req       *http.Request
	sess      *Session
	persisted bool
	failed    bool
	// saved is set when persistence succeeded; rev is the session revision it saw.
	saved bool
	rev   uint64
}

func (rw *responseWriter) persist() {
	if rw.persisted {
		return
	}
	rw.persisted = true

	ctx := rw.req.Context()
	err := rw.manager.Persist(ctx, rw.ResponseWriter, rw.sess)
	if err == nil {
		rw.saved = true
		rw.rev = rw.sess.rev
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		rw.manager.logger.DebugContext(ctx, "request aborted, session not persisted")
		return
	}

	rw.failed = true
	rw.manager.logger.ErrorContext(ctx, "failed to persist session",
		logger.SessionID(rw.sess.ID()),
		logger.Error(err),
	)
	rw.manager.errorHandler(rw.ResponseWriter, rw.req, err)
}

// reportLateChanges logs mutations made after the session reached the client
func (rw *responseWriter) reportLateChanges() {
	if !rw.saved || rw.sess.rev == rw.rev {
		return
	}

	err := errorf(ErrModifiedAfterWrite, "session changed after the response was written")
	if serr := rw.sess.Err(); serr != nil {
		err = errors.Join(err, serr)
	}
	rw.manager.metrics.fail(err)
	rw.manager.logger.ErrorContext(rw.req.Context(), "session changes after response write are lost",
		logger.SessionID(rw.sess.ID()),
		logger.Error(err),
	)
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.persist()
	if rw.failed {
		return
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.persist()
	if rw.failed {
		return len(b), nil
	}
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	rw.persist()
	if rw.failed {
		return
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying writer for http.ResponseController
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
