package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestTokenList_Lookup(t *testing.T) {
	list := NewTokenList([]BearerToken{
		{Token: "abc123", Name: "ci"},
		{Token: "xyz789", Scopes: []string{"metrics"}},
	})

	tests := []struct {
		name      string
		presented string
		wantName  string
		wantFound bool
	}{
		{name: "first entry", presented: "abc123", wantName: "ci", wantFound: true},
		{name: "second entry", presented: "xyz789", wantFound: true},
		{name: "unknown", presented: "nope"},
		{name: "prefix of token", presented: "abc"},
		{name: "trailing space", presented: "abc123 "},
		{name: "different case", presented: "ABC123"},
		{name: "empty", presented: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := list.Lookup(context.Background(), tt.presented)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if (got != nil) != tt.wantFound {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.presented, got != nil, tt.wantFound)
			}
			if got != nil && got.Name != tt.wantName {
				t.Errorf("Lookup(%q).Name = %q, want %q", tt.presented, got.Name, tt.wantName)
			}
		})
	}
}

func TestTokenList_DuplicatesReturnFirst(t *testing.T) {
	list := NewTokenList([]BearerToken{
		{Token: "dup", Name: "first"},
		{Token: "dup", Name: "second"},
	})

	got, _ := list.Lookup(context.Background(), "dup")
	if got == nil || got.Name != "first" {
		t.Fatalf("Lookup(dup) = %+v, want first entry", got)
	}
}

func TestTokenList_Immutable(t *testing.T) {
	src := []BearerToken{{Token: "abc123", Scopes: []string{"metrics"}}}
	list := NewTokenList(src)

	src[0].Token = "changed"
	src[0].Scopes[0] = "changed"

	got, _ := list.Lookup(context.Background(), "abc123")
	if got == nil {
		t.Fatal("mutating the source slice affected the list")
	}
	if got.Scopes[0] != "metrics" {
		t.Errorf("Scopes[0] = %q, want metrics", got.Scopes[0])
	}

	got.Scopes[0] = "mutated"
	tokens := list.Tokens()
	if tokens[0].Scopes[0] != "metrics" {
		t.Error("mutating a lookup result affected the list")
	}
}

func TestTokenList_SkipsEmptyTokens(t *testing.T) {
	list := NewTokenList([]BearerToken{{Token: ""}, {Token: "a"}})
	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", list.Len())
	}
	if got, _ := list.Lookup(context.Background(), ""); got != nil {
		t.Error("empty presented token matched")
	}
}

func TestTokenList_Nil(t *testing.T) {
	var list *TokenList
	if list.Len() != 0 {
		t.Error("nil list Len() != 0")
	}
	if got, err := list.Lookup(context.Background(), "x"); got != nil || err != nil {
		t.Errorf("nil list Lookup() = %v, %v", got, err)
	}
}

func TestBearerAuthenticator_Authenticate(t *testing.T) {
	list := NewTokenList([]BearerToken{
		{Token: "abc123", Name: "ci", Scopes: []string{"metrics"}},
		{Token: "plain"},
	})
	a := NewBearerAuthenticator(BearerConfig{}, list)

	tests := []struct {
		name          string
		headers       map[string][]string
		wantErr       error
		wantPrincipal string
	}{
		{name: "no header", headers: nil, wantErr: ErrMissingCredentials},
		{name: "empty header", headers: map[string][]string{"Authorization": {""}}, wantErr: ErrMissingCredentials},
		{name: "basic scheme", headers: map[string][]string{"Authorization": {"Basic abc123"}}, wantErr: ErrTokenMalformed},
		{name: "lowercase scheme", headers: map[string][]string{"Authorization": {"bearer abc123"}}, wantErr: ErrTokenMalformed},
		{name: "no space", headers: map[string][]string{"Authorization": {"Bearerabc123"}}, wantErr: ErrTokenMalformed},
		{name: "wrong token", headers: map[string][]string{"Authorization": {"Bearer wrong"}}, wantErr: ErrInvalidCredentials},
		{name: "double space", headers: map[string][]string{"Authorization": {"Bearer  abc123"}}, wantErr: ErrInvalidCredentials},
		{name: "named token", headers: map[string][]string{"Authorization": {"Bearer abc123"}}, wantPrincipal: "ci"},
		{name: "unnamed token", headers: map[string][]string{"Authorization": {"Bearer plain"}}, wantPrincipal: "api-token"},
		{name: "lowercase header key", headers: map[string][]string{"authorization": {"Bearer abc123"}}, wantPrincipal: "ci"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := a.Authenticate(context.Background(), &AuthRequest{Headers: tt.headers})
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if tt.wantErr != nil {
				if result.Authenticated {
					t.Fatal("expected authentication failure")
				}
				if !errors.Is(result.Error, tt.wantErr) {
					t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
				}
				return
			}
			if !result.Authenticated {
				t.Fatalf("expected success, got %v", result.Error)
			}
			if result.Identity.Principal != tt.wantPrincipal {
				t.Errorf("Principal = %q, want %q", result.Identity.Principal, tt.wantPrincipal)
			}
			if result.Identity.Method != AuthMethodBearer {
				t.Errorf("Method = %q, want bearer", result.Identity.Method)
			}
		})
	}
}

func TestBearerAuthenticator_StoreError(t *testing.T) {
	storeErr := errors.New("backend down")
	a := NewBearerAuthenticator(BearerConfig{}, failingStore{err: storeErr})

	_, err := a.Authenticate(context.Background(), &AuthRequest{
		Headers: map[string][]string{"Authorization": {"Bearer x"}},
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("Authenticate() error = %v, want %v", err, storeErr)
	}
}

func TestBearerAuthenticator_Concurrent(t *testing.T) {
	a := NewBearerAuthenticator(BearerConfig{}, NewTokenList([]BearerToken{{Token: "abc123"}}))
	req := &AuthRequest{Headers: map[string][]string{"Authorization": {"Bearer abc123"}}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := a.Authenticate(context.Background(), req)
			if err != nil || !result.Authenticated {
				t.Errorf("Authenticate() = %+v, %v", result, err)
			}
		}()
	}
	wg.Wait()
}

type failingStore struct{ err error }

func (s failingStore) Lookup(context.Context, string) (*BearerToken, error) {
	return nil, s.err
}
