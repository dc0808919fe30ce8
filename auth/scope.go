package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Scope is a parsed SMART-style scope: <compartment>/<Resource>.<action>.
// Any part may be "*".
type Scope struct {
	Compartment string
	Resource    string
	Action      string
}

// ParseScope parses a single scope token such as "fhir/Patient.read".
func ParseScope(s string) (Scope, bool) {
	compartment, rest, ok := strings.Cut(s, "/")
	if !ok || compartment == "" {
		return Scope{}, false
	}
	i := strings.LastIndexByte(rest, '.')
	if i <= 0 || i == len(rest)-1 {
		return Scope{}, false
	}
	return Scope{Compartment: compartment, Resource: rest[:i], Action: rest[i+1:]}, true
}

// Permits reports whether the scope covers req.
func (s Scope) Permits(req *AuthzRequest) bool {
	return matchPart(s.Compartment, req.Compartment) &&
		matchPart(s.Resource, req.Resource) &&
		matchPart(s.Action, req.Action)
}

func matchPart(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// ScopeAuthorizer permits a request when any scope granted to the identity
// covers it.
type ScopeAuthorizer struct{}

// NewScopeAuthorizer creates a scope authorizer.
func NewScopeAuthorizer() *ScopeAuthorizer {
	return &ScopeAuthorizer{}
}

// Name returns "scope".
func (a *ScopeAuthorizer) Name() string {
	return "scope"
}

// Authorize checks the identity's scopes against the request. Unparseable
// scope tokens grant nothing.
func (a *ScopeAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return denied(req, "no identity provided")
	}
	for _, raw := range req.Subject.Scopes() {
		if s, ok := ParseScope(raw); ok && s.Permits(req) {
			return nil
		}
	}
	return denied(req, "no scope permits this action")
}

// FHIRTarget derives the authorization target of a FHIR REST call:
// "GET /fhir/Patient/123" is (fhir, Patient, read). Safe methods read,
// everything else writes. A path outside compartment yields an empty resource.
func FHIRTarget(compartment, method, rawURI string) *AuthzRequest {
	req := &AuthzRequest{Compartment: compartment, Action: "write"}
	switch method {
	case http.MethodGet, http.MethodHead, "":
		req.Action = "read"
	}

	path := rawURI
	if u, err := url.ParseRequestURI(rawURI); err == nil {
		path = u.Path
	}
	trimmed := strings.TrimPrefix(path, "/")
	if compartment != "" {
		rest, ok := strings.CutPrefix(trimmed, compartment)
		if !ok || (rest != "" && rest[0] != '/') {
			return req
		}
		trimmed = strings.TrimPrefix(rest, "/")
	}
	req.Resource, _, _ = strings.Cut(trimmed, "/")
	return req
}

var _ Authorizer = (*ScopeAuthorizer)(nil)
