// Package common defines shared constants and sentinel errors used across
// the gophauth server and admin tooling. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrStore         = errors.New("credential store error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Credential verification outcomes.
	ErrMismatch        = errors.New("password mismatch")
	ErrNoMatch         = errors.New("no matching credentials")
	ErrBanned          = errors.New("account banned")
	ErrUnknownStrategy = errors.New("unknown strategy")

	// Token errors.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("malformed token")
	ErrMissingToken     = errors.New("missing token")

	// Startup configuration errors.
	ErrConfig = errors.New("invalid configuration")
)

// IsTokenError reports whether err is one of the token-layer failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrMissingToken)
}
