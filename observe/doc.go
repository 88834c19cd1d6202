// Package observe provides the observability primitives used by the gate.
//
// It bundles a JSON structured logger, OpenTelemetry tracing and metrics for
// access decisions, and exporter setup. It performs no request handling of
// its own: the gate wraps its decision function with Middleware.
package observe
