// Package config loads tokengate configuration.
//
// Configuration comes from a single YAML file named by the --config flag or
// the TOKENGATE_CONFIG environment variable. Without either, Default() is
// used as is. Unknown keys are rejected.
//
// The signing secret is never written in the file directly in production.
// The secret key holds a reference that the secret package resolves:
//
//	secret: secretref:env:TOKENGATE_SECRET    # default
//	secret: secretref:file:/run/secrets/tokengate
//	secret: ${SOME_OTHER_VAR}
package config
