package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"reflect"

	"github.com/google/uuid"
)

// MaxIDLength bounds the length of a session id
const MaxIDLength = 256

// IDGenerator issues session ids. It is called for every new session and on Reset.
type IDGenerator interface {
	Generate(r *http.Request) (string, error)
}

// IDGeneratorFunc adapts a function to IDGenerator
type IDGeneratorFunc func(r *http.Request) (string, error)

// Generate calls f(r)
func (f IDGeneratorFunc) Generate(r *http.Request) (string, error) {
	return f(r)
}

// RandomIDGenerator issues 32 random bytes encoded as unpadded base64url
type RandomIDGenerator struct{}

// Generate returns a new random id
func (RandomIDGenerator) Generate(*http.Request) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// Generate returns a new UUID string
func (UUIDGenerator) Generate(*http.Request) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// validatingGenerator checks every id produced by the wrapped generator
type validatingGenerator struct {
	next IDGenerator
}

func (g validatingGenerator) Generate(r *http.Request) (string, error) {
	id, err := g.next.Generate(r)
	if err != nil {
		return "", errorf(ErrInvalidSessionID, "generate id: %w", err)
	}
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// ValidateID reports whether id can be used as a session id: non-empty, at
// most MaxIDLength bytes of printable ASCII without cookie separators.
func ValidateID(id string) error {
	if id == "" {
		return errorf(ErrInvalidSessionID, "id is empty")
	}
	if len(id) > MaxIDLength {
		return errorf(ErrInvalidSessionID, "id is longer than %d bytes", MaxIDLength)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c <= 0x20 || c >= 0x7f || c == '"' || c == ',' || c == ';' || c == '\\' {
			return errorf(ErrInvalidSessionID, "id contains invalid byte %q", c)
		}
	}
	return nil
}

// isNil reports whether v is nil or an interface holding a nil pointer,
// func, map or similar value that would panic when called.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
