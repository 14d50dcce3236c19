package cookie

import "errors"

var (
	ErrNoPassword       = errors.New("cookie.no_password")
	ErrPasswordTooShort = errors.New("cookie.password_too_short")
	ErrSealFailed       = errors.New("cookie.seal_failed")
	ErrDecryptionFailed = errors.New("cookie.decryption_failed")
	ErrCookieNotFound   = errors.New("cookie.not_found")
	ErrInvalidFormat    = errors.New("cookie.invalid_format")
	ErrNoCodec          = errors.New("cookie.no_codec")
)
