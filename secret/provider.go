package secret

import "context"

// Provider reads materialized secrets from one backend.
//
// A Provider never logs secret values and is safe for concurrent use.
type Provider interface {
	// Name is the provider segment of a "secretref:<name>:<ref>" value.
	Name() string

	// Resolve returns the raw secret content for ref. Failures to obtain
	// the secret wrap ErrSecretUnreadable.
	Resolve(ctx context.Context, ref string) (string, error)

	// Close releases backend connections.
	Close() error
}
