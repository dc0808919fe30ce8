package secret

import "errors"

var (
	// ErrMissingEnv indicates ${VAR} referenced an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrUnknownProvider indicates a secretref named an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider not registered")

	// ErrMalformedRef indicates a value starting with secretref: that is not
	// secretref:<provider>:<ref>.
	ErrMalformedRef = errors.New("secret: malformed secret reference")

	// ErrEmptySecret indicates a provider resolved to an empty value.
	ErrEmptySecret = errors.New("secret: resolved value is empty")

	// ErrNotFound indicates the referenced secret does not exist.
	ErrNotFound = errors.New("secret: not found")
)
