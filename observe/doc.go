// Package observe provides observability primitives for authentication
// decisions: tracing, metrics and structured logging.
//
// It is a pure instrumentation library. The gateway wires a Middleware
// around each token check; the observer owns exporter setup and shutdown.
package observe
