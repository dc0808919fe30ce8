package auth

import (
	"context"
	"fmt"
)

// Authorizer decides whether an authenticated identity may act on a target.
// It returns nil to permit and an error matching ErrForbidden to deny.
type Authorizer interface {
	Name() string
	Authorize(ctx context.Context, req *AuthzRequest) error
}

// AuthzRequest is the target of an authorization decision.
type AuthzRequest struct {
	Subject *Identity

	// Compartment is the scope prefix, e.g. "fhir" or "patient".
	Compartment string

	// Resource is the FHIR resource type, e.g. "Patient".
	Resource string

	// Action is "read" or "write".
	Action string
}

// AuthzError describes a denied target.
type AuthzError struct {
	Subject  string
	Resource string
	Action   string
	Reason   string
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("auth: %s may not %s %s: %s", e.Subject, e.Action, e.Resource, e.Reason)
}

// Is matches ErrForbidden.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

func denied(req *AuthzRequest, reason string) *AuthzError {
	e := &AuthzError{Subject: "<anonymous>", Resource: req.Resource, Action: req.Action, Reason: reason}
	if req.Subject != nil {
		e.Subject = req.Subject.Subject
	}
	return e
}

// AuthorizerFunc lets a plain function serve as an Authorizer.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Name returns "func".
func (f AuthorizerFunc) Name() string { return "func" }

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}
