package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinPasswordLength is the shortest password accepted by NewCodec.
	MinPasswordLength = 32

	keySize  = 32
	hkdfInfo = "hybridsession-cookie-seal-v1"
)

// Codec seals and unseals cookie payloads with AES-256-GCM.
// Keys are derived from passwords with HKDF-SHA256. The first password seals,
// every password is tried on unseal so old cookies survive a rotation.
type Codec struct {
	aeads []cipher.AEAD
}

// NewCodec derives one AEAD per password. Empty passwords are dropped.
func NewCodec(passwords []string) (*Codec, error) {
	passwords = slices.DeleteFunc(slices.Clone(passwords), func(s string) bool { return s == "" })
	if len(passwords) == 0 {
		return nil, ErrNoPassword
	}

	aeads := make([]cipher.AEAD, 0, len(passwords))
	for i, p := range passwords {
		if len(p) < MinPasswordLength {
			return nil, fmt.Errorf("%w: password %d has %d chars, need at least %d", ErrPasswordTooShort, i, len(p), MinPasswordLength)
		}

		aead, err := newAEAD(p)
		if err != nil {
			return nil, err
		}
		aeads = append(aeads, aead)
	}

	return &Codec{aeads: aeads}, nil
}

// Seal encrypts payload and binds it to the cookie name, so a value sealed
// for one cookie cannot be replayed under another name.
func (c *Codec) Seal(name string, payload []byte) (string, error) {
	aead := c.aeads[0]

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrSealFailed, err)
	}

	sealed := aead.Seal(nonce, nonce, payload, []byte(name))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Unseal reverses Seal.
func (c *Codec) Unseal(name, value string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	for _, aead := range c.aeads {
		if len(raw) < aead.NonceSize()+aead.Overhead() {
			return nil, ErrInvalidFormat
		}

		nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
		plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(name))
		if err == nil {
			return plaintext, nil
		}
	}

	return nil, ErrDecryptionFailed
}

func newAEAD(password string) (cipher.AEAD, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(password), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, errors.Join(ErrSealFailed, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrSealFailed, err)
	}

	return cipher.NewGCM(block)
}
