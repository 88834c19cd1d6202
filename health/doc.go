// Package health reports whether the gate is fit to serve.
//
// A Checker reports Healthy, Degraded, or Unhealthy. An Aggregator runs
// registered checkers concurrently under a timeout and folds their results
// into a Report. The probes mount on a gorilla/mux router:
//
//	/healthz  liveness, always 200 while the process serves (RegisterLiveness)
//	/readyz   200 unless a check is unhealthy (RegisterChecks)
//	/health   JSON report of every check (RegisterChecks)
//
// Only /healthz is served without a bearer token.
package health
