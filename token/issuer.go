package token

import (
	"fmt"
	"time"
)

// Issuer mints tokens under a single shared secret.
//
// Contract:
// - Concurrency: safe for concurrent use; an Issuer is immutable.
// - Errors: construction fails for an empty secret; Issue fails only for an
//   invalid lifespan.
type Issuer struct {
	secret Secret
	now    func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock sets the time source for iat. Default: time.Now.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer returns an Issuer for secret. An empty secret is a configuration
// error and is rejected here rather than at issue time.
func NewIssuer(secret Secret, opts ...IssuerOption) (*Issuer, error) {
	if secret.IsZero() {
		return nil, ErrSecretUnavailable
	}
	i := &Issuer{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

type claimOptions struct {
	ttl      time.Duration
	hasTTL   bool
	issuedAt time.Time
}

// ClaimOption adjusts the claims of a single Issue call.
type ClaimOption func(*claimOptions)

// WithTTL sets exp = iat + ttl, truncated to whole seconds. Without it the
// token never expires.
func WithTTL(ttl time.Duration) ClaimOption {
	return func(o *claimOptions) {
		o.ttl = ttl
		o.hasTTL = true
	}
}

// WithIssuedAt overrides the issuer clock for iat.
func WithIssuedAt(t time.Time) ClaimOption {
	return func(o *claimOptions) {
		o.issuedAt = t
	}
}

// Issue mints a token for subject with the given scope.
func (i *Issuer) Issue(subject, scope string, opts ...ClaimOption) (Token, error) {
	var o claimOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.issuedAt.IsZero() {
		o.issuedAt = i.now()
	}

	claims := Claims{
		Subject:  subject,
		Scope:    scope,
		IssuedAt: o.issuedAt.Unix(),
	}
	if o.hasTTL {
		if o.ttl < time.Second {
			return "", fmt.Errorf("%w: got %s", ErrInvalidTTL, o.ttl)
		}
		exp := claims.IssuedAt + int64(o.ttl/time.Second)
		claims.ExpiresAt = &exp
	}
	return i.Sign(claims)
}

// Sign serializes and signs an explicit claim set.
func (i *Issuer) Sign(claims Claims) (Token, error) {
	header := DefaultHeader()
	method, _ := header.Alg.signingMethod()

	headerSeg, err := encodeJSON(header)
	if err != nil {
		return "", fmt.Errorf("token: encoding header: %w", err)
	}
	claimsSeg, err := encodeJSON(claims)
	if err != nil {
		return "", fmt.Errorf("token: encoding claims: %w", err)
	}

	signingInput := headerSeg + "." + claimsSeg
	sig, err := signature(method, i.secret, signingInput)
	if err != nil {
		return "", fmt.Errorf("token: signing: %w", err)
	}
	return Token(signingInput + "." + sig), nil
}
