package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/hybridsession/pkg/logger"
)

type sessionContextKey struct{}

// WithSession adds a session to the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves a session from the context
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return session
}

// LogAttr is a logger.ContextExtractor adding the id of the session in ctx
func LogAttr(ctx context.Context) (slog.Attr, bool) {
	session, ok := FromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.SessionID(session.ID()), true
}
