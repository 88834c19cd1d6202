package credential

import (
	"context"

	"github.com/jonwraymond/flowgate/health"
)

// Checker reports the security posture of a credential set: degraded when
// admin auth is disabled or no API tokens are loaded, healthy otherwise.
// It is never unhealthy, since the gate keeps serving in both cases.
type Checker struct {
	set *Set
}

// NewChecker creates a Checker for set.
func NewChecker(set *Set) *Checker {
	return &Checker{set: set}
}

// Name returns "credentials".
func (c *Checker) Name() string { return "credentials" }

// Check evaluates the credential set. It does no I/O.
func (c *Checker) Check(_ context.Context) health.Result {
	_, adminEnabled := c.set.AdminPasswordHash()
	details := map[string]any{
		"admin_auth_enabled": adminEnabled,
		"api_token_count":    c.set.TokenCount(),
	}

	switch {
	case !adminEnabled:
		return health.Degraded("admin interface is unauthenticated").WithDetails(details)
	case c.set.TokenCount() == 0:
		return health.Degraded("no API tokens configured").WithDetails(details)
	default:
		return health.Healthy("credentials loaded").WithDetails(details)
	}
}

var _ health.Checker = (*Checker)(nil)
