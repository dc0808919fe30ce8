package auth

import (
	"net/http"
	"strings"
)

// BearerTransport attaches "Authorization: Bearer <Token>" to outbound
// requests that do not already carry an Authorization header.
type BearerTransport struct {
	// Token is the compact token, without the "Bearer " prefix.
	Token string

	// Base is the underlying transport. Default: http.DefaultTransport.
	Base http.RoundTripper
}

// NewBearerTransport creates a transport for tok. A "Bearer " prefix on tok
// is tolerated and stripped.
func NewBearerTransport(tok string, base http.RoundTripper) (*BearerTransport, error) {
	tok = strings.TrimSpace(strings.TrimPrefix(tok, "Bearer "))
	if tok == "" {
		return nil, ErrEmptyToken
	}
	return &BearerTransport{Token: tok, Base: base}, nil
}

// RoundTrip implements http.RoundTripper. The caller's request is not
// modified.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.Token)
	return base.RoundTrip(clone)
}

// Client returns an http.Client using t.
func (t *BearerTransport) Client() *http.Client {
	return &http.Client{Transport: t}
}

var _ http.RoundTripper = (*BearerTransport)(nil)
