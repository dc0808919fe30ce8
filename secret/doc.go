// Package secret resolves the shared signing secret from configuration.
//
// A configured value is first expanded strictly against the environment
// (see ExpandEnvStrict). If the result is a reference it is looked up
// through a Provider, otherwise it is the secret itself:
//
//	secretref:env:TOKENGATE_SECRET
//	secretref:file:/run/secrets/tokengate_secret
//	${TOKENGATE_SECRET}
//
// Expansion covers both $VAR and ${VAR}, and an unset variable in either
// form is ErrMissingEnv. A literal secret containing `$` doubles it:
// "pa$$word" resolves to "pa$word".
//
// Two providers are built in and registered on DefaultRegistry: "env" reads
// an environment variable and "file" reads a mounted secret file.
package secret
