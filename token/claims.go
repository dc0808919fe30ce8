package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm names the signing algorithm declared in a token header.
type Algorithm string

// HS256 is the only algorithm tokens are signed or verified with.
const HS256 Algorithm = "HS256"

// TypeJWT is the fixed "typ" header value.
const TypeJWT = "JWT"

// signingMethod resolves an algorithm through a closed match. Anything not
// listed here, including "none" and every asymmetric name, is unsupported.
func (a Algorithm) signingMethod() (*jwt.SigningMethodHMAC, bool) {
	switch a {
	case HS256:
		return jwt.SigningMethodHS256, true
	default:
		return nil, false
	}
}

// Supported reports whether tokens declaring a can be verified.
func (a Algorithm) Supported() bool {
	_, ok := a.signingMethod()
	return ok
}

// Header is the first token segment.
type Header struct {
	Alg Algorithm `json:"alg"`
	Typ string    `json:"typ"`
}

// DefaultHeader returns the header every issued token carries.
func DefaultHeader() Header {
	return Header{Alg: HS256, Typ: TypeJWT}
}

// Claims is the second token segment. Field order fixes the JSON layout:
// {"sub","scope","iat"[,"exp"]}.
type Claims struct {
	// Subject identifies the caller the token was issued to.
	Subject string `json:"sub"`

	// Scope is the granted scope string, e.g. "fhir/*.*".
	Scope string `json:"scope"`

	// IssuedAt is seconds since the Unix epoch.
	IssuedAt int64 `json:"iat"`

	// ExpiresAt is seconds since the Unix epoch. Nil means the token never
	// expires.
	ExpiresAt *int64 `json:"exp,omitempty"`
}

// IssuedTime returns IssuedAt as a time.
func (c *Claims) IssuedTime() time.Time {
	return time.Unix(c.IssuedAt, 0)
}

// Expiry returns the expiry time and whether one is set.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*c.ExpiresAt, 0), true
}

// ExpiredAt reports whether the claims are expired at now. The cutoff is
// strict: a token is expired from the exp second onward.
func (c *Claims) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && now.Unix() >= *c.ExpiresAt
}

// Token is a compact signed token.
type Token string

// String returns the compact serialization.
func (t Token) String() string {
	return string(t)
}

// ParseUnverified decodes the header and claims of a token without checking
// its signature or expiry. It is meant for display only; authorization
// decisions must go through a Verifier.
func ParseUnverified(tok string) (*Header, *Claims, error) {
	segments := strings.Split(tok, ".")
	if len(segments) != 3 {
		return nil, nil, ErrMalformedToken
	}
	var header Header
	if err := decodeJSON(segments[0], &header, headerLayout); err != nil {
		return nil, nil, err
	}
	var claims Claims
	if err := decodeJSON(segments[1], &claims, claimsLayout); err != nil {
		return nil, nil, err
	}
	return &header, &claims, nil
}

// signature computes the canonical-encoded MAC of signingInput.
func signature(method *jwt.SigningMethodHMAC, secret Secret, signingInput string) (string, error) {
	sig, err := method.Sign(signingInput, secret.key)
	if err != nil {
		return "", err
	}
	return EncodeSegment(sig), nil
}
