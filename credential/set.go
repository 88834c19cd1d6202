package credential

import (
	"errors"

	"github.com/jonwraymond/flowgate/auth"
)

// DefaultAdminUsername is used when no admin username secret is available.
const DefaultAdminUsername = "admin"

// DefaultSessionExpirySeconds is the editor session inactivity window (7 days).
const DefaultSessionExpirySeconds = 604800

// ErrAdminAuthDisabled reports that no admin password hash was loaded, so
// the admin interface has no authentication configured.
var ErrAdminAuthDisabled = errors.New("credential: admin auth disabled: password hash not found")

// Set is the immutable credential material the gate and editor consume.
// It is safe for concurrent use.
type Set struct {
	adminUsername        string
	adminPasswordHash    string
	hasPasswordHash      bool
	tokens               *auth.TokenList
	sessionExpirySeconds int
}

// Option configures a Set.
type Option func(*Set)

// WithSessionExpiry sets the admin session expiry in seconds. Non-positive
// values keep DefaultSessionExpirySeconds.
func WithSessionExpiry(seconds int) Option {
	return func(s *Set) {
		if seconds > 0 {
			s.sessionExpirySeconds = seconds
		}
	}
}

// NewSet builds a Set. An empty username becomes DefaultAdminUsername and an
// empty passwordHash disables admin auth. tokens is copied.
func NewSet(username, passwordHash string, tokens []auth.BearerToken, opts ...Option) *Set {
	if username == "" {
		username = DefaultAdminUsername
	}
	s := &Set{
		adminUsername:        username,
		adminPasswordHash:    passwordHash,
		hasPasswordHash:      passwordHash != "",
		tokens:               auth.NewTokenList(tokens),
		sessionExpirySeconds: DefaultSessionExpirySeconds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AdminUsername returns the admin username.
func (s *Set) AdminUsername() string {
	return s.adminUsername
}

// AdminPasswordHash returns the admin password hash, or false when admin
// auth is disabled.
func (s *Set) AdminPasswordHash() (string, bool) {
	return s.adminPasswordHash, s.hasPasswordHash
}

// APITokens returns a copy of the API tokens in load order.
func (s *Set) APITokens() []auth.BearerToken {
	tokens := s.tokens.Tokens()
	if tokens == nil {
		return []auth.BearerToken{}
	}
	return tokens
}

// TokenStore returns the token allow-list used for bearer authentication.
func (s *Set) TokenStore() auth.TokenStore {
	return s.tokens
}

// TokenCount returns the number of API tokens.
func (s *Set) TokenCount() int {
	return s.tokens.Len()
}

// SessionExpirySeconds returns the admin session expiry.
func (s *Set) SessionExpirySeconds() int {
	return s.sessionExpirySeconds
}
