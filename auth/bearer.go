package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"
)

// DefaultBearerPrefix is the case-sensitive scheme prefix of the Authorization header.
const DefaultBearerPrefix = "Bearer "

// BearerToken is one entry of the API token allow-list.
type BearerToken struct {
	// Token is the opaque secret presented by callers.
	Token string `json:"token"`

	// Name optionally identifies the token holder in logs.
	Name string `json:"name,omitempty"`

	// Scopes optionally restrict which endpoint classes the token reaches.
	Scopes []string `json:"scopes,omitempty"`
}

// TokenStore looks up presented bearer tokens.
type TokenStore interface {
	// Lookup returns the entry matching presented, or nil if none matches.
	Lookup(ctx context.Context, presented string) (*BearerToken, error)
}

// TokenList is an immutable, ordered allow-list of bearer tokens.
// It is safe for concurrent use without locking.
type TokenList struct {
	entries []tokenEntry
}

type tokenEntry struct {
	token  BearerToken
	digest [sha256.Size]byte
}

// NewTokenList copies tokens into a new list. Entries with an empty token are skipped.
func NewTokenList(tokens []BearerToken) *TokenList {
	entries := make([]tokenEntry, 0, len(tokens))
	for _, t := range tokens {
		if t.Token == "" {
			continue
		}
		entries = append(entries, tokenEntry{
			token:  cloneToken(t),
			digest: sha256.Sum256([]byte(t.Token)),
		})
	}
	return &TokenList{entries: entries}
}

// Len returns the number of tokens in the list.
func (l *TokenList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Tokens returns a copy of the entries in load order.
func (l *TokenList) Tokens() []BearerToken {
	if l == nil {
		return nil
	}
	out := make([]BearerToken, len(l.entries))
	for i, e := range l.entries {
		out[i] = cloneToken(e.token)
	}
	return out
}

// Lookup compares presented against every entry in constant time and returns
// a copy of the first match. Every entry is compared even after a match.
func (l *TokenList) Lookup(_ context.Context, presented string) (*BearerToken, error) {
	if l == nil {
		return nil, nil
	}

	digest := sha256.Sum256([]byte(presented))
	match := -1
	for i := range l.entries {
		eq := subtle.ConstantTimeCompare(digest[:], l.entries[i].digest[:])
		if eq == 1 && match < 0 && ConstantTimeCompare(presented, l.entries[i].token.Token) {
			match = i
		}
	}
	if match < 0 {
		return nil, nil
	}

	found := cloneToken(l.entries[match].token)
	return &found, nil
}

func cloneToken(t BearerToken) BearerToken {
	if t.Scopes != nil {
		t.Scopes = append([]string(nil), t.Scopes...)
	}
	return t
}

// ConstantTimeCompare performs constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// BearerConfig configures the bearer-token authenticator.
type BearerConfig struct {
	// HeaderName is the header carrying the credential.
	// Default: "Authorization"
	HeaderName string

	// Prefix is the case-sensitive scheme prefix stripped from the header.
	// Default: "Bearer "
	Prefix string
}

// BearerAuthenticator validates "Authorization: Bearer <token>" credentials.
type BearerAuthenticator struct {
	config BearerConfig
	store  TokenStore
}

// NewBearerAuthenticator creates a bearer-token authenticator over store.
func NewBearerAuthenticator(config BearerConfig, store TokenStore) *BearerAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.Prefix == "" {
		config.Prefix = DefaultBearerPrefix
	}

	return &BearerAuthenticator{
		config: config,
		store:  store,
	}
}

// Name returns "bearer".
func (a *BearerAuthenticator) Name() string {
	return "bearer"
}

// Authenticate extracts the token after the prefix and looks it up.
// The token is used exactly as presented; no trimming is applied.
func (a *BearerAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader(a.config.HeaderName)
	if header == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	token, ok := strings.CutPrefix(header, a.config.Prefix)
	if !ok {
		return AuthFailure(ErrTokenMalformed, a.Name()), nil
	}

	entry, err := a.store.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return AuthFailure(ErrInvalidCredentials, a.Name()), nil
	}

	principal := entry.Name
	if principal == "" {
		principal = "api-token"
	}

	return AuthSuccess(&Identity{
		Principal: principal,
		Scopes:    entry.Scopes,
		Method:    AuthMethodBearer,
	}), nil
}

var _ Authenticator = (*BearerAuthenticator)(nil)

var _ TokenStore = (*TokenList)(nil)
