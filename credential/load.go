package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/flowgate/auth"
	"github.com/jonwraymond/flowgate/observe"
	"github.com/jonwraymond/flowgate/secret"
)

// Sources names the secret references the credential set is loaded from.
type Sources struct {
	AdminUsername     string `yaml:"admin_username"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	APITokens         string `yaml:"api_tokens"`
}

// DefaultSources returns the mounted-file locations under /run/secrets.
func DefaultSources() Sources {
	return Sources{
		AdminUsername:     "secretref:file:node-red/admin-username",
		AdminPasswordHash: "secretref:file:node-red/admin-password-hash",
		APITokens:         "secretref:file:node-red/api-tokens",
	}
}

// TokenEntries is the structured shape of the API tokens secret: a JSON
// array of objects, each carrying at least a non-empty "token".
type TokenEntries []auth.BearerToken

// Validate rejects the list when any entry lacks a token.
func (e TokenEntries) Validate() error {
	for i, t := range e {
		if t.Token == "" {
			return fmt.Errorf("entry %d has no token, so the whole list is rejected", i)
		}
	}
	return nil
}

// Load reads the credential set once. It never fails:
//   - a missing admin username falls back to DefaultAdminUsername;
//   - a missing admin password hash disables admin auth and is logged
//     at critical severity;
//   - missing or malformed API tokens become an empty list, reported by a
//     single warning that says which of the two happened.
func Load(ctx context.Context, loader *secret.Loader, src Sources, logger observe.Logger, opts ...Option) *Set {
	if logger == nil {
		logger = observe.NopLogger()
	}

	username, ok := loader.LoadText(ctx, src.AdminUsername)
	if !ok {
		username = DefaultAdminUsername
	}

	hash, ok := loader.LoadText(ctx, src.AdminPasswordHash)
	if !ok {
		logger.Critical(ctx, "Admin password hash not found! Admin interface will be INSECURE.",
			observe.Field{Key: "ref", Value: src.AdminPasswordHash},
			observe.Field{Key: "error", Value: ErrAdminAuthDisabled},
		)
	}

	// An empty token list is a configuration state, not a fault, so the
	// loader's error-level diagnostic is bypassed here.
	var tokens TokenEntries
	if err := loader.ReadJSON(ctx, src.APITokens, &tokens); err != nil {
		tokens = nil
		if errors.Is(err, secret.ErrSecretMalformed) {
			logger.Warn(ctx, "API token list is malformed and was dropped entirely. HTTP endpoints will reject every bearer token.",
				observe.Field{Key: "ref", Value: src.APITokens},
				observe.Field{Key: "error", Value: err},
			)
		} else {
			logger.Warn(ctx, "No API tokens configured. HTTP endpoints will reject every bearer token.",
				observe.Field{Key: "ref", Value: src.APITokens},
				observe.Field{Key: "error", Value: err},
			)
		}
	} else if len(tokens) == 0 {
		logger.Warn(ctx, "No API tokens configured. HTTP endpoints will reject every bearer token.",
			observe.Field{Key: "ref", Value: src.APITokens},
		)
	}

	set := NewSet(username, hash, tokens, opts...)
	_, adminEnabled := set.AdminPasswordHash()
	logger.Info(ctx, "credentials loaded",
		observe.Field{Key: "admin_user", Value: set.AdminUsername()},
		observe.Field{Key: "admin_auth_enabled", Value: adminEnabled},
		observe.Field{Key: "api_token_count", Value: set.TokenCount()},
	)
	return set
}
