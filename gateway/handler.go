package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonwraymond/tokengate/auth"
	"github.com/jonwraymond/tokengate/observe"
	"github.com/jonwraymond/tokengate/resilience"
)

// Outcome reasons the gateway adds to the token reasons.
const (
	ReasonForbidden  = "forbidden"
	ReasonInternal   = "internal"
	ReasonOverloaded = "overloaded"
)

// HandlerConfig configures the check handler.
type HandlerConfig struct {
	// Authenticator verifies the credential. Required.
	Authenticator auth.Authenticator

	// Authorizer, when set, checks the original request against the
	// identity's scopes.
	Authorizer auth.Authorizer

	// Compartment is the scope compartment of the protected API.
	// Default: "fhir"
	Compartment string

	// Realm is advertised on denial. Default: "tokengate"
	Realm string

	// SubjectHeader, when set, carries the verified subject on allow.
	SubjectHeader string

	// Admission, when set, bounds concurrent checks. A check refused a
	// slot is denied.
	Admission *resilience.Admission

	// Middleware instruments each check. Default: no telemetry.
	Middleware *observe.Middleware
}

type handler struct {
	cfg HandlerConfig
}

// NewHandler returns the check endpoint handler.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.Authenticator == nil {
		return nil, ErrNoAuthenticator
	}
	if cfg.Compartment == "" {
		cfg.Compartment = "fhir"
	}
	if cfg.Realm == "" {
		cfg.Realm = "tokengate"
	}
	if cfg.Middleware == nil {
		cfg.Middleware = observe.NewMiddleware(nil, nil, nil)
	}
	return &handler{cfg: cfg}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var identity *auth.Identity
	check := h.cfg.Middleware.Wrap(func(ctx context.Context, _ observe.CheckMeta) observe.Outcome {
		out, id := h.check(ctx, r)
		identity = id
		return out
	})

	out := check(r.Context(), observe.CheckMeta{
		Component:  "gateway",
		Scheme:     string(auth.AuthMethodBearer),
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
	})

	if !out.Allowed {
		auth.WriteUnauthorized(w, h.cfg.Realm)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if h.cfg.SubjectHeader != "" {
		w.Header().Set(h.cfg.SubjectHeader, identity.Subject)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) check(ctx context.Context, r *http.Request) (observe.Outcome, *auth.Identity) {
	if h.cfg.Admission != nil {
		release, err := h.cfg.Admission.Acquire(ctx)
		if err != nil {
			return observe.Outcome{Reason: ReasonOverloaded, Err: err}, nil
		}
		defer release()
	}

	res, err := h.cfg.Authenticator.Authenticate(ctx, &auth.AuthRequest{
		Headers:  r.Header,
		Resource: originalURI(r),
	})
	if err != nil {
		return observe.Outcome{Reason: ReasonInternal, Err: err}, nil
	}
	if !res.Authenticated {
		return observe.Outcome{Reason: res.Reason.String(), Err: res.Error}, nil
	}

	if h.cfg.Authorizer != nil {
		uri := originalURI(r)
		if uri == "" {
			return observe.Outcome{Reason: ReasonForbidden, Err: errors.New("gateway: original request URI not forwarded")}, nil
		}
		target := auth.FHIRTarget(h.cfg.Compartment, originalMethod(r), uri)
		target.Subject = res.Identity
		if err := h.cfg.Authorizer.Authorize(ctx, target); err != nil {
			return observe.Outcome{Reason: ReasonForbidden, Err: err}, nil
		}
	}

	return observe.Outcome{Allowed: true, Reason: res.Reason.String(), Subject: res.Identity.Subject}, res.Identity
}

// originalURI returns the proxied request URI as forwarded by nginx
// (X-Original-URI) or Traefik (X-Forwarded-Uri).
func originalURI(r *http.Request) string {
	if v := r.Header.Get("X-Original-URI"); v != "" {
		return v
	}
	return r.Header.Get("X-Forwarded-Uri")
}

func originalMethod(r *http.Request) string {
	if v := r.Header.Get("X-Original-Method"); v != "" {
		return v
	}
	return r.Header.Get("X-Forwarded-Method")
}
