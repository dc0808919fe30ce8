package auth

import (
	"context"
	"net/http"

	"github.com/jonwraymond/tokengate/token"
)

// Authenticator turns the credential carried by a request into an Identity.
//
// Implementations must be safe for concurrent use. A credential that fails
// verification is a Result with Authenticated=false and a nil error; the
// error return is reserved for failures unrelated to the credential, such as
// a canceled context.
type Authenticator interface {
	// Name identifies the scheme, e.g. "bearer".
	Name() string

	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest is what an Authenticator sees of an incoming request.
type AuthRequest struct {
	Headers http.Header

	// Resource is the request path, for logging.
	Resource string
}

// GetHeader returns the first value of key. Lookup is case-insensitive.
func (r *AuthRequest) GetHeader(key string) string {
	if r == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// AuthResult is the outcome of one authentication attempt.
type AuthResult struct {
	Authenticated bool

	// Identity is set only when Authenticated.
	Identity *Identity

	// Error explains a failure. It matches both an auth sentinel and the
	// token sentinel of Reason.
	Error error

	// Reason is the token decision reason; token.ReasonNone on success.
	Reason token.Reason

	// Method is the scheme that produced the result.
	Method string
}

// AuthSuccess is the result for an accepted identity.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{Authenticated: true, Identity: identity, Method: string(identity.Method)}
}

// AuthFailure is the result for a rejected credential.
func AuthFailure(err error, reason token.Reason, method string) *AuthResult {
	return &AuthResult{Error: err, Reason: reason, Method: method}
}

// AuthenticatorFunc lets a plain function serve as an Authenticator.
type AuthenticatorFunc func(ctx context.Context, req *AuthRequest) (*AuthResult, error)

// Name returns "func".
func (f AuthenticatorFunc) Name() string { return "func" }

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	return f(ctx, req)
}
