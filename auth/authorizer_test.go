package auth

import (
	"context"
	"errors"
	"testing"
)

func TestScopeError(t *testing.T) {
	err := &ScopeError{Principal: "ci", Resource: "metrics", Scope: "metrics:read"}

	want := `auth: "ci" lacks scope "metrics:read" for metrics`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %v, want %v", got, want)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("errors.Is(ScopeError, ErrForbidden) = false")
	}
}

func TestScopeAuthorizer(t *testing.T) {
	required := map[string]string{"metrics": "metrics:read", "general": ""}
	a := NewScopeAuthorizer(required)
	required["general"] = "mutated"

	tests := []struct {
		name     string
		scopes   []string
		resource string
		wantErr  bool
	}{
		{name: "no requirement", resource: "general"},
		{name: "unknown resource", resource: "other"},
		{name: "has scope", scopes: []string{"metrics:read"}, resource: "metrics"},
		{name: "wildcard", scopes: []string{"*"}, resource: "metrics"},
		{name: "missing scope", scopes: []string{"flows"}, resource: "metrics", wantErr: true},
		{name: "no scopes", resource: "metrics", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authorize(context.Background(), &AuthzRequest{
				Subject:  &Identity{Principal: "ci", Scopes: tt.scopes},
				Resource: tt.resource,
				Action:   "GET",
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrForbidden) {
				t.Errorf("error %v is not ErrForbidden", err)
			}
			var scopeErr *ScopeError
			if err != nil && (!errors.As(err, &scopeErr) || scopeErr.Scope != "metrics:read") {
				t.Errorf("error %v does not name the missing scope", err)
			}
		})
	}
}

func TestScopeAuthorizer_NilSubject(t *testing.T) {
	a := NewScopeAuthorizer(map[string]string{"metrics": "metrics:read"})
	if err := a.Authorize(context.Background(), &AuthzRequest{Resource: "metrics"}); err == nil {
		t.Fatal("expected denial for nil subject")
	}
}
