// Package gateway serves authorization subrequests.
//
// A reverse proxy (nginx auth_request, Traefik forwardAuth, Envoy ext_authz
// in HTTP mode) forwards the client's Authorization header to the check
// endpoint. The handler answers 204 to allow and 401 to deny. Every denial
// has the same status, headers and body so callers learn nothing about why.
//
// The health endpoints (/healthz, /readyz, /health, /health/{name}) and
// /metrics share the check listener unless ServerConfig.AdminAddr is set.
// /health/secret reports whether the signing secret is configured, so
// without AdminAddr the listen address must stay reachable only by the
// proxy and internal monitoring.
package gateway
