package auth

import (
	"strings"
	"time"

	"github.com/jonwraymond/tokengate/token"
)

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone   AuthMethod = "none"
	AuthMethodBearer AuthMethod = "bearer"
)

// Identity represents an authenticated principal.
type Identity struct {
	// Subject is the token's sub claim.
	Subject string

	// Scope is the raw, space-separated scope claim.
	Scope string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// IssuedAt is the token's iat.
	IssuedAt time.Time

	// ExpiresAt is the token's exp; zero for tokens that never expire.
	ExpiresAt time.Time
}

// IdentityFromClaims builds a bearer identity from verified claims.
func IdentityFromClaims(c *token.Claims) *Identity {
	if c == nil {
		return &Identity{Method: AuthMethodNone}
	}
	id := &Identity{
		Subject:  c.Subject,
		Scope:    c.Scope,
		Method:   AuthMethodBearer,
		IssuedAt: c.IssuedTime(),
	}
	if exp, ok := c.Expiry(); ok {
		id.ExpiresAt = exp
	}
	return id
}

// Scopes splits Scope on whitespace.
func (id *Identity) Scopes() []string {
	if id == nil {
		return nil
	}
	return strings.Fields(id.Scope)
}

// HasScope reports whether scope appears verbatim in Scopes.
func (id *Identity) HasScope(scope string) bool {
	for _, s := range id.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// ExpiredAt reports whether the identity has expired at now. Identities
// without an expiry never expire.
func (id *Identity) ExpiredAt(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(id.ExpiresAt)
}
