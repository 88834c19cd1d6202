package secret

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory creates a Provider from configuration.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry manages provider factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// NewDefaultRegistry creates a registry with the "file" and "vault" factories.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("file", NewFileProviderFromConfig)
	_ = r.Register("vault", NewVaultProviderFromConfig)
	return r
}

// Register adds a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	if strings.TrimSpace(name) == "" || factory == nil {
		return errors.New("secret: invalid provider registration")
	}
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("secret: provider %q already registered", name)
	}
	r.providers[name] = factory
	return nil
}

// Create instantiates a provider by name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("secret: provider name is required")
	}

	r.mu.RLock()
	factory, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}

	return factory(cfg)
}

// List returns registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global registry for secret providers.
var DefaultRegistry = NewDefaultRegistry()

// NewFileProviderFromConfig builds a FileProvider from {"root": string}.
func NewFileProviderFromConfig(cfg map[string]any) (Provider, error) {
	root, err := optionString(cfg, "root")
	if err != nil {
		return nil, err
	}
	return NewFileProvider(root), nil
}

// NewVaultProviderFromConfig builds a VaultProvider from
// {"address", "token", "namespace", "field": string}.
func NewVaultProviderFromConfig(cfg map[string]any) (Provider, error) {
	var vc VaultConfig
	for key, dst := range map[string]*string{
		"address":   &vc.Address,
		"token":     &vc.Token,
		"namespace": &vc.Namespace,
		"field":     &vc.Field,
	} {
		v, err := optionString(cfg, key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return NewVaultProvider(vc)
}

func optionString(cfg map[string]any, key string) (string, error) {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("secret: option %q must be a string, got %T", key, raw)
	}
	return s, nil
}
