package health

import "context"

// SecretSource reports whether a signing secret is configured.
// *token.Verifier satisfies it.
type SecretSource interface {
	Available() bool
}

// SecretChecker reports Degraded when the signing secret is missing. The
// gateway still answers checks in that state; it denies all of them.
type SecretChecker struct {
	src    SecretSource
	source string
}

// NewSecretChecker creates a checker for src. source names where the secret
// is expected to come from (e.g. "TOKENGATE_SECRET") and is reported in the
// result details; it is never the secret itself.
func NewSecretChecker(src SecretSource, source string) *SecretChecker {
	return &SecretChecker{src: src, source: source}
}

// Name returns "secret".
func (c *SecretChecker) Name() string { return "secret" }

// Check reports the secret state.
func (c *SecretChecker) Check(context.Context) Result {
	var details map[string]any
	if c.source != "" {
		details = map[string]any{"source": c.source}
	}
	if c.src == nil || !c.src.Available() {
		return Degraded("signing secret not configured; all requests are denied", ErrSecretMissing).
			WithDetails(details)
	}
	return Healthy("signing secret configured").WithDetails(details)
}

var _ Checker = (*SecretChecker)(nil)
