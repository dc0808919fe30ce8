package token

import "errors"

// Sentinel errors. Each denial Reason maps to exactly one of these.
var (
	ErrNoCredential         = errors.New("token: no bearer credential")
	ErrMalformedToken       = errors.New("token: malformed token")
	ErrMalformedEncoding    = errors.New("token: malformed segment encoding")
	ErrMalformedClaims      = errors.New("token: malformed header or claims")
	ErrUnsupportedAlgorithm = errors.New("token: unsupported algorithm")
	ErrBadSignature         = errors.New("token: bad signature")
	ErrExpired              = errors.New("token: expired")
	ErrSecretUnavailable    = errors.New("token: shared secret unavailable")

	// Issuance errors
	ErrInvalidTTL = errors.New("token: ttl must be at least one second")
)
