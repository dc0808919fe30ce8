package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/tokengate/token"
)

// BearerConfig configures the bearer authenticator.
type BearerConfig struct {
	// HeaderName is the header containing the credential.
	// Default: "Authorization"
	HeaderName string

	// PassthroughHeader is consulted when HeaderName is absent, for proxies
	// that forward the client credential under another name
	// (e.g. "X-Original-Authorization"). Empty disables it.
	PassthroughHeader string

	// PassthroughBare treats the PassthroughHeader value as a bare compact
	// token with no "Bearer " scheme. HeaderName always requires the scheme.
	PassthroughBare bool

	// Now supplies the verification time. Default: time.Now.
	Now func() time.Time
}

// BearerAuthenticator verifies HMAC bearer tokens with a token.Verifier.
type BearerAuthenticator struct {
	config   BearerConfig
	verifier *token.Verifier
}

// NewBearerAuthenticator creates a bearer authenticator.
func NewBearerAuthenticator(config BearerConfig, verifier *token.Verifier) (*BearerAuthenticator, error) {
	if verifier == nil {
		return nil, ErrNilVerifier
	}
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &BearerAuthenticator{config: config, verifier: verifier}, nil
}

// Name returns "bearer".
func (a *BearerAuthenticator) Name() string {
	return string(AuthMethodBearer)
}

// Authenticate verifies the credential. Every verification failure is an
// AuthResult with Authenticated=false; only a canceled context is an error.
func (a *BearerAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d token.Decision
	if cred, bare := a.credential(req); bare {
		d = a.verifier.VerifyToken(cred, a.config.Now())
	} else {
		d = a.verifier.Verify(cred, a.config.Now())
	}
	if d.Allow {
		return AuthSuccess(IdentityFromClaims(d.Claims)), nil
	}
	return AuthFailure(fmt.Errorf("%w: %w", classify(d.Reason), d.Err()), d.Reason, a.Name()), nil
}

// credential returns the presented value and whether it is a bare token.
func (a *BearerAuthenticator) credential(req *AuthRequest) (string, bool) {
	if v := req.GetHeader(a.config.HeaderName); v != "" {
		return v, false
	}
	if a.config.PassthroughHeader != "" {
		if v := req.GetHeader(a.config.PassthroughHeader); v != "" {
			return v, a.config.PassthroughBare
		}
	}
	return "", false
}

func classify(r token.Reason) error {
	switch r {
	case token.ReasonNoCredential:
		return ErrMissingCredentials
	case token.ReasonExpired:
		return ErrTokenExpired
	case token.ReasonMalformedToken, token.ReasonMalformedClaims:
		return ErrTokenMalformed
	case token.ReasonSecretUnavailable:
		return ErrUnavailable
	default:
		return ErrInvalidCredentials
	}
}

var _ Authenticator = (*BearerAuthenticator)(nil)
