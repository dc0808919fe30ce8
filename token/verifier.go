package token

import (
	"crypto/subtle"
	"strings"
	"time"
)

// BearerPrefix must open the Authorization value exactly, case included.
const BearerPrefix = "Bearer "

// Verifier authenticates bearer credentials against a shared secret.
//
// Contract:
// - Concurrency: safe for unbounded concurrent use; no I/O, no locks.
// - Time: callers pass the current wall-clock time on every call.
// - Errors: never returns errors; every failure is a denying Decision.
type Verifier struct {
	secret Secret
}

// NewVerifier returns a Verifier for secret. A zero secret is accepted: the
// Verifier then denies every request with ReasonSecretUnavailable.
func NewVerifier(secret Secret) *Verifier {
	return &Verifier{secret: secret}
}

// Available reports whether a secret is configured.
func (v *Verifier) Available() bool {
	return v != nil && !v.secret.IsZero()
}

// Verify checks an Authorization header value of the form "Bearer <token>".
func (v *Verifier) Verify(authorization string, now time.Time) Decision {
	if !v.Available() {
		return deny(ReasonSecretUnavailable, nil)
	}
	raw, ok := strings.CutPrefix(authorization, BearerPrefix)
	if !ok || raw == "" {
		return deny(ReasonNoCredential, nil)
	}
	return v.verify(raw, now)
}

// VerifyToken checks a bare compact token.
func (v *Verifier) VerifyToken(tok string, now time.Time) Decision {
	if !v.Available() {
		return deny(ReasonSecretUnavailable, nil)
	}
	if tok == "" {
		return deny(ReasonNoCredential, nil)
	}
	return v.verify(tok, now)
}

func (v *Verifier) verify(raw string, now time.Time) Decision {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return deny(ReasonMalformedToken, nil)
	}

	var header Header
	if err := decodeJSON(segments[0], &header, headerLayout); err != nil {
		return deny(ReasonMalformedClaims, err)
	}
	var claims Claims
	if err := decodeJSON(segments[1], &claims, claimsLayout); err != nil {
		return deny(ReasonMalformedClaims, err)
	}

	// The header is untrusted until the signature checks out, so the
	// algorithm is only ever matched, never used to pick a signer freely.
	method, ok := header.Alg.signingMethod()
	if !ok {
		return deny(ReasonUnsupportedAlgorithm, nil)
	}

	signingInput := raw[:len(segments[0])+1+len(segments[1])]
	expected, err := signature(method, v.secret, signingInput)
	if err != nil {
		return deny(ReasonBadSignature, err)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(segments[2])) != 1 {
		return deny(ReasonBadSignature, nil)
	}

	if claims.ExpiredAt(now) {
		return deny(ReasonExpired, nil)
	}
	return allow(&claims)
}
