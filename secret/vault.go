package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// DefaultVaultField is the secret field read when a reference names none.
const DefaultVaultField = "value"

// VaultConfig configures a VaultProvider. Empty fields fall back to the
// Vault client's environment (VAULT_ADDR, VAULT_TOKEN, VAULT_NAMESPACE).
type VaultConfig struct {
	Address   string
	Token     string
	Namespace string

	// Field is read when a reference has no "#field" suffix.
	Field string
}

// VaultProvider reads secrets from HashiCorp Vault.
//
// References have the form "<path>#<field>", e.g. "secret/data/node-red#api-tokens".
// KV v2 responses (data nested under "data") and KV v1 responses are both
// accepted. Non-string field values are returned as JSON.
type VaultProvider struct {
	client *vault.Client
	field  string
}

// NewVaultProvider creates a VaultProvider. Requests are not retried.
func NewVaultProvider(cfg VaultConfig) (*VaultProvider, error) {
	vcfg := vault.DefaultConfig()
	if vcfg.Error != nil {
		return nil, fmt.Errorf("secret: vault config: %w", vcfg.Error)
	}
	if cfg.Address != "" {
		vcfg.Address = cfg.Address
	}
	vcfg.MaxRetries = 0

	client, err := vault.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("secret: vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	field := cfg.Field
	if field == "" {
		field = DefaultVaultField
	}
	return &VaultProvider{client: client, field: field}, nil
}

// Name returns "vault".
func (p *VaultProvider) Name() string { return "vault" }

// Resolve reads the field named by ref.
func (p *VaultProvider) Resolve(ctx context.Context, ref string) (string, error) {
	path, field, _ := strings.Cut(ref, "#")
	path = strings.Trim(path, "/")
	if path == "" {
		return "", fmt.Errorf("%w: %s: empty vault path", ErrSecretUnreadable, ref)
	}
	if field == "" {
		field = p.field
	}

	sec, err := p.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrSecretUnreadable, ref, describeVaultError(err))
	}
	if sec == nil || sec.Data == nil {
		return "", fmt.Errorf("%w: %s: no secret found", ErrSecretUnreadable, ref)
	}

	data := sec.Data
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}

	value, ok := data[field]
	if !ok || value == nil {
		return "", fmt.Errorf("%w: %s: field %q not present", ErrSecretUnreadable, ref, field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSecretMalformed, ref, err)
	}
	return string(raw), nil
}

// Close is a no-op; the Vault client holds no long-lived resources.
func (p *VaultProvider) Close() error { return nil }

func describeVaultError(err error) string {
	var apiErr *vault.ResponseError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusForbidden:
			return "permission denied"
		case http.StatusNotFound:
			return "no secret found"
		}
		return fmt.Sprintf("vault returned %d: %s", apiErr.StatusCode, strings.Join(apiErr.Errors, ", "))
	}
	return err.Error()
}

var _ Provider = (*VaultProvider)(nil)
