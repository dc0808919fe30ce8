// Package token implements the HMAC-SHA256 bearer tokens used to gate access
// to the FHIR record server.
//
// A token is the compact string
//
//	base64url(header-json) "." base64url(claims-json) "." base64url(hmac-sha256)
//
// An Issuer mints tokens from a shared Secret; a Verifier recomputes the
// signature for every request and returns a Decision. Neither keeps state
// between calls: validity is recomputed, never looked up.
//
// The Verifier is fail-closed. Checks run in a fixed order and stop at the
// first failure, and the algorithm named in the header is matched against a
// closed set (only HS256) before any signature is computed. Signatures are
// compared in constant time.
//
// Decision.Reason exists for logs and metrics. Callers serving untrusted
// clients must collapse every denial into one response.
package token
