// Package health provides health checking primitives for the token gateway.
//
// A Checker reports a Status (Healthy, Degraded or Unhealthy). An Aggregator
// runs a set of checkers and derives an overall status, and the HTTP
// handlers expose it:
//
//	agg := health.NewAggregator()
//	agg.Register("secret", health.NewSecretChecker(verifier, "env:TOKENGATE_SECRET"))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// Degraded is still ready: a gateway without a signing secret keeps serving
// and denies every request, and /readyz reports DEGRADED with status 200.
package health
