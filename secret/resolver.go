package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RefPrefix marks a configuration value as a secret reference.
const RefPrefix = "secretref:"

// Resolver resolves secret references using registered providers.
//
// A value "secretref:<provider>:<ref>" is resolved by the named provider.
// Any other value is treated as a reference for the fallback provider.
type Resolver struct {
	providers map[string]Provider
	fallback  string
}

// NewResolver creates a resolver. The first provider becomes the fallback
// for values that are not secret references.
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register registers a provider with the resolver.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	if r.fallback == "" {
		r.fallback = provider.Name()
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns the raw secret content for value.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: no resolver", ErrProviderNotRegistered)
	}

	providerName, ref, ok := ParseSecretRef(value)
	if !ok {
		if strings.HasPrefix(value, RefPrefix) {
			return "", fmt.Errorf("%w: invalid secret reference %q", ErrSecretUnreadable, value)
		}
		providerName, ref = r.fallback, value
	}
	if strings.TrimSpace(ref) == "" {
		return "", errors.New("secret: ref is required")
	}

	provider, ok := r.providers[providerName]
	if !ok || provider == nil {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, providerName)
	}
	return provider.Resolve(ctx, ref)
}

// Close closes every registered provider and joins their errors.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, RefPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}
