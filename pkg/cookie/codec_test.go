package cookie_test

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hybridsession/pkg/cookie"
)

const (
	testPassword    = "passwordmustbelongerthan32characterssowejustmakethislonger"
	testOldPassword = "an-older-password-that-is-also-long-enough-to-pass"
)

func TestNewCodec(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		passwords []string
		wantErr   error
	}{
		{"no passwords", nil, cookie.ErrNoPassword},
		{"only blank passwords", []string{"", ""}, cookie.ErrNoPassword},
		{"password too short", []string{"short"}, cookie.ErrPasswordTooShort},
		{"second password too short", []string{testPassword, "short"}, cookie.ErrPasswordTooShort},
		{"exact minimum length", []string{strings.Repeat("x", cookie.MinPasswordLength)}, nil},
		{"valid", []string{testPassword}, nil},
		{"rotation", []string{testPassword, testOldPassword}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.NewCodec(tt.passwords)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	codec, err := cookie.NewCodec([]string{testPassword})
	require.NoError(t, err)

	payloads := [][]byte{
		[]byte(`{"id":"abc"}`),
		[]byte(`{"id":"abc","store":{"some":{"value":"2"}}}`),
		{},
	}

	for _, p := range payloads {
		sealed, err := codec.Seal("session", p)
		require.NoError(t, err)
		assert.NotContains(t, sealed, "store")

		got, err := codec.Unseal("session", sealed)
		require.NoError(t, err)
		assert.Equal(t, string(p), string(got))
	}
}

func TestCodec_BoundToCookieName(t *testing.T) {
	t.Parallel()
	codec, err := cookie.NewCodec([]string{testPassword})
	require.NoError(t, err)

	sealed, err := codec.Seal("session", []byte("payload"))
	require.NoError(t, err)

	_, err = codec.Unseal("other", sealed)
	assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)
}

func TestCodec_Tampering(t *testing.T) {
	t.Parallel()
	codec, err := cookie.NewCodec([]string{testPassword})
	require.NoError(t, err)

	sealed, err := codec.Seal("session", []byte("payload"))
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	t.Run("flipped byte", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Unseal("session", base64.RawURLEncoding.EncodeToString(raw))
		assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)
	})

	t.Run("not base64", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Unseal("session", "Fe26.2**deadcafe")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Unseal("session", sealed[:8])
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})
}

func TestCodec_PasswordRotation(t *testing.T) {
	t.Parallel()
	oldCodec, err := cookie.NewCodec([]string{testOldPassword})
	require.NoError(t, err)
	rotated, err := cookie.NewCodec([]string{testPassword, testOldPassword})
	require.NoError(t, err)
	fresh, err := cookie.NewCodec([]string{testPassword})
	require.NoError(t, err)

	sealed, err := oldCodec.Seal("session", []byte("issued before rotation"))
	require.NoError(t, err)

	got, err := rotated.Unseal("session", sealed)
	require.NoError(t, err)
	assert.Equal(t, "issued before rotation", string(got))

	_, err = fresh.Unseal("session", sealed)
	assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)

	resealed, err := rotated.Seal("session", got)
	require.NoError(t, err)
	_, err = fresh.Unseal("session", resealed)
	assert.NoError(t, err)
}

func TestCodec_NonceUniqueness(t *testing.T) {
	t.Parallel()
	codec, err := cookie.NewCodec([]string{testPassword})
	require.NoError(t, err)

	const goroutines, perGoroutine = 20, 50
	seen := make(map[string]struct{}, goroutines*perGoroutine)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				sealed, err := codec.Seal("session", []byte("same payload"))
				assert.NoError(t, err)

				raw, err := base64.RawURLEncoding.DecodeString(sealed)
				assert.NoError(t, err)

				mu.Lock()
				seen[string(raw[:12])] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine, "every seal must use a fresh nonce")
}
