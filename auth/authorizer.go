package auth

import (
	"context"
	"fmt"
	"maps"
)

// Authorizer decides whether an authenticated identity may reach a resource.
type Authorizer interface {
	Name() string

	// Authorize returns nil to admit, or an error matching ErrForbidden.
	Authorize(ctx context.Context, req *AuthzRequest) error
}

// AuthzRequest describes one access to authorize.
type AuthzRequest struct {
	Subject *Identity

	// Resource is the endpoint class, e.g. "metrics".
	Resource string

	// Action is the HTTP method.
	Action string
}

// ScopeError reports a subject lacking the scope a resource requires.
type ScopeError struct {
	Principal string
	Resource  string
	Scope     string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("auth: %q lacks scope %q for %s", e.Principal, e.Scope, e.Resource)
}

// Is makes every ScopeError match ErrForbidden.
func (e *ScopeError) Is(target error) bool {
	return target == ErrForbidden
}

// ScopeAuthorizer admits a subject when it carries the scope required for
// the requested resource. Resources with no entry, or an empty required
// scope, admit every authenticated subject.
type ScopeAuthorizer struct {
	required map[string]string
}

// NewScopeAuthorizer creates a ScopeAuthorizer from a resource to scope map.
// The map is copied.
func NewScopeAuthorizer(required map[string]string) *ScopeAuthorizer {
	m := maps.Clone(required)
	if m == nil {
		m = map[string]string{}
	}
	return &ScopeAuthorizer{required: m}
}

// Name returns "scope".
func (a *ScopeAuthorizer) Name() string { return "scope" }

// Authorize checks the subject's scopes against the resource's requirement.
func (a *ScopeAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	scope := a.required[req.Resource]
	if scope == "" || req.Subject.HasScope(scope) {
		return nil
	}

	var principal string
	if req.Subject != nil {
		principal = req.Subject.Principal
	}
	return &ScopeError{Principal: principal, Resource: req.Resource, Scope: scope}
}

var _ Authorizer = (*ScopeAuthorizer)(nil)
