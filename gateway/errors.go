package gateway

import "errors"

var (
	// ErrNoAuthenticator indicates HandlerConfig.Authenticator is nil.
	ErrNoAuthenticator = errors.New("gateway: authenticator is required")

	// ErrNoHandler indicates ServerConfig.Check is nil.
	ErrNoHandler = errors.New("gateway: check handler is required")

	// ErrNoAdminListener indicates Serve was given no admin listener while
	// ServerConfig.AdminAddr is set.
	ErrNoAdminListener = errors.New("gateway: admin listener is required")
)
