// Package cookie seals session payloads into HTTP cookies.
//
// A Codec turns an arbitrary byte payload into an opaque, URL-safe string using
// AES-256-GCM. The key is derived from a password of at least 32 characters
// with HKDF-SHA256, and the cookie name is bound as additional authenticated
// data so a sealed value cannot be moved to a different cookie. Several
// passwords may be supplied: the first seals, all of them unseal, which allows
// rotating passwords without invalidating cookies already issued.
//
// A Manager writes and reads cookies with shared default attributes (Path "/",
// HttpOnly, SameSite=Lax) and offers SetSealed/GetSealed on top of its Codec.
//
// # Usage
//
//	codec, err := cookie.NewCodec([]string{os.Getenv("COOKIE_PASSWORD")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	man := cookie.New(codec, cookie.WithSecure(true))
//
//	_ = man.SetSealed(w, "session", []byte(`{"id":"abc"}`))
//	payload, err := man.GetSealed(r, "session")
//
// # Errors
//
// ErrNoPassword and ErrPasswordTooShort are returned at construction time.
// ErrInvalidFormat and ErrDecryptionFailed are returned by Unseal for values
// that were tampered with, truncated or sealed under an unknown password.
package cookie
