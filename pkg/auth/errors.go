package auth

import "errors"

// DefaultLoginMessage is shown when the backend rejects a login without a usable detail.
const DefaultLoginMessage = "Error al iniciar sesion"

// ErrSessionExpired is returned by API calls after the backend answered 401.
// The controller has already cleared the session when a caller sees it.
var ErrSessionExpired = errors.New("sesion expirada")

// ErrClosed is returned by Login after Close.
var ErrClosed = errors.New("auth: controller closed")

// AuthError is a rejected login. Message is safe to show to the user verbatim.
type AuthError struct {
	Message    string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
