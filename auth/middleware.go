package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/jonwraymond/tokengate/token"
)

// UnauthorizedBody is the response body of every denial.
const UnauthorizedBody = "unauthorized\n"

// WriteUnauthorized writes the single denial shape: 401, a Bearer challenge
// for realm and a fixed body. Callers must not vary it by reason.
func WriteUnauthorized(w http.ResponseWriter, realm string) {
	h := w.Header()
	h.Set("WWW-Authenticate", `Bearer realm="`+escapeQuoted(realm)+`"`)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(UnauthorizedBody))
}

func escapeQuoted(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// MiddlewareOptions configures RequireBearer.
type MiddlewareOptions struct {
	// Realm is advertised in WWW-Authenticate. Default: "tokengate".
	Realm string

	// Target derives the authorization target of a request. Default:
	// FHIRTarget with compartment "fhir" on the request URI.
	Target func(r *http.Request) *AuthzRequest

	// OnResult observes every authentication result, for logging and
	// metrics. It must not write to the response.
	OnResult func(ctx context.Context, r *http.Request, res *AuthResult)
}

// RequireBearer returns middleware that admits only authenticated requests.
// authz may be nil to skip authorization. Every denial, including internal
// errors and authorization failures, gets the WriteUnauthorized response.
func RequireBearer(authn Authenticator, authz Authorizer, opts MiddlewareOptions) func(http.Handler) http.Handler {
	if opts.Realm == "" {
		opts.Realm = "tokengate"
	}
	if opts.Target == nil {
		opts.Target = func(r *http.Request) *AuthzRequest {
			return FHIRTarget("fhir", r.Method, r.URL.RequestURI())
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			res, err := authn.Authenticate(ctx, &AuthRequest{Headers: r.Header, Resource: r.URL.Path})
			if err != nil {
				res = AuthFailure(err, token.ReasonNone, authn.Name())
			}
			if opts.OnResult != nil {
				opts.OnResult(ctx, r, res)
			}
			if !res.Authenticated {
				WriteUnauthorized(w, opts.Realm)
				return
			}

			if authz != nil {
				target := opts.Target(r)
				target.Subject = res.Identity
				if err := authz.Authorize(ctx, target); err != nil {
					WriteUnauthorized(w, opts.Realm)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, res.Identity)))
		})
	}
}
