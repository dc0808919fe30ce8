package auth

import "errors"

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrUnavailable        = errors.New("auth: verification unavailable")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")

	// Construction errors
	ErrNilVerifier = errors.New("auth: verifier is nil")
	ErrEmptyToken  = errors.New("auth: token is empty")
)
