// Package auth adapts token verification to HTTP request handling.
//
// BearerAuthenticator turns a token.Decision into an AuthResult and an
// Identity. RequireBearer wraps a handler so only verified requests reach
// it, and ScopeAuthorizer optionally checks SMART-style scopes such as
// "fhir/Patient.read". BearerTransport does the client side, attaching
// "Authorization: Bearer <token>" to outbound requests.
package auth
