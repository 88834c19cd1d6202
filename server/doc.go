// Package server assembles the HTTP surface in front of the editor service
// and runs it until its context is canceled.
//
// Routing, in match order:
//
//	/healthz                 liveness, never gated
//	<admin prefix>/...       proxied to the editor, which enforces admin login
//	/readyz, /health         gated (general class); health checks
//	/metrics                 gated (metrics class); local Prometheus handler or proxied
//	everything else          gated (general class), proxied to the editor
//
// Gated responses, denials included, carry the configured CORS headers.
package server
