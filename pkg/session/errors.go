package session

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidConfig indicates the manager cannot be built from the given options
	ErrInvalidConfig = errors.New("session.invalid_config")

	// ErrInvalidArgument indicates a bad key or value passed to a session mutator
	ErrInvalidArgument = errors.New("session.invalid_argument")

	// ErrInvalidSessionID indicates an empty or malformed session identifier
	ErrInvalidSessionID = errors.New("session.invalid_id")

	// ErrCookieUnseal indicates the session cookie could not be decoded
	ErrCookieUnseal = errors.New("session.cookie_unseal_failed")

	// ErrCacheUnavailable indicates the cache engine is not ready or failed
	ErrCacheUnavailable = errors.New("session.cache_unavailable")

	// ErrRevocation indicates a session could not be revoked
	ErrRevocation = errors.New("session.revocation_failed")

	// ErrEncoding indicates the session store could not be serialized
	ErrEncoding = errors.New("session.encoding_failed")

	// ErrModifiedAfterWrite indicates the session changed after it was
	// written to the response; those changes are not persisted
	ErrModifiedAfterWrite = errors.New("session.modified_after_write")
)

// StatusCode maps a session error to the HTTP status the default error
// handler responds with. Unknown errors map to 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrCookieUnseal):
		return http.StatusBadRequest
	case errors.Is(err, ErrRevocation) && errors.Is(err, ErrInvalidSessionID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorf(sentinel error, format string, args ...any) error {
	return errors.Join(sentinel, fmt.Errorf(format, args...))
}

// errorKind returns the metrics label for err
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrModifiedAfterWrite):
		return "modified_after_write"
	case errors.Is(err, ErrRevocation):
		return "revocation"
	case errors.Is(err, ErrCookieUnseal):
		return "cookie_unseal"
	case errors.Is(err, ErrCacheUnavailable):
		return "cache_unavailable"
	case errors.Is(err, ErrInvalidSessionID):
		return "invalid_id"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	default:
		return "internal"
	}
}
