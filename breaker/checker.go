package breaker

import (
	"context"
	"time"

	"github.com/jonwraymond/flowgate/health"
)

// Checker reports the breaker state as a health check named "upstream".
// An open or probing breaker is degraded, never unhealthy: the gate itself
// still answers.
type Checker struct {
	breaker *Breaker
}

// NewChecker creates a Checker for b.
func NewChecker(b *Breaker) *Checker {
	return &Checker{breaker: b}
}

// Name returns "upstream".
func (c *Checker) Name() string { return "upstream" }

// Check implements health.Checker.
func (c *Checker) Check(_ context.Context) health.Result {
	snap := c.breaker.Snapshot()
	details := map[string]any{
		"breaker":  snap.State.String(),
		"failures": snap.Failures,
	}
	if !snap.LastFailure.IsZero() {
		details["last_failure"] = snap.LastFailure.UTC().Format(time.RFC3339)
	}

	switch snap.State {
	case StateClosed:
		return health.Healthy("upstream reachable").WithDetails(details)
	case StateHalfOpen:
		return health.Degraded("upstream recovering").WithDetails(details)
	default:
		return health.Degraded("upstream unavailable").WithDetails(details)
	}
}

var _ health.Checker = (*Checker)(nil)
