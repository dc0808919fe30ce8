package config

import "errors"

var (
	// ErrSecretRequired indicates the issuing path found no signing secret.
	ErrSecretRequired = errors.New("config: signing secret is required")

	// ErrInvalid indicates a configuration value failed validation.
	ErrInvalid = errors.New("config: invalid configuration")
)
