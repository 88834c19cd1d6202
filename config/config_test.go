package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/flowgate/secret"
)

func TestDefault(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Address() != "127.0.0.1:1880" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.Session.ExpirySeconds != 604800 {
		t.Errorf("ExpirySeconds = %d", cfg.Session.ExpirySeconds)
	}
	if cfg.CORS.Origin != "*" || cfg.CORS.Methods != "GET,PUT,POST,DELETE" {
		t.Errorf("CORS = %+v", cfg.CORS)
	}
	if cfg.Editor.DebugMaxLength != 1000 || cfg.Editor.FlowFile != "flows.json" || !cfg.Editor.FlowFilePretty {
		t.Errorf("Editor = %+v", cfg.Editor)
	}
	if cfg.Secrets.AdminPasswordHash != "secretref:file:node-red/admin-password-hash" {
		t.Errorf("AdminPasswordHash ref = %q", cfg.Secrets.AdminPasswordHash)
	}
}

func TestDefault_PortFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	if got := Default().Server.Port; got != 8080 {
		t.Errorf("Port = %d, want 8080", got)
	}

	t.Setenv("PORT", "not-a-number")
	if got := Default().Server.Port; got != DefaultPort {
		t.Errorf("Port = %d, want %d", got, DefaultPort)
	}
}

func TestParse_OverridesAndExpansion(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("VAULT_ADDR_TEST", "https://vault.internal:8200")

	cfg, err := Parse([]byte(`
server:
  host: 0.0.0.0
  port: ${FLOWGATE_PORT:-9000}
  shutdown_timeout: 3s
upstream:
  url: http://editor:1880
  admin_prefix: ""
  breaker:
    max_failures: 2
    reset_timeout: 5s
secrets:
  provider: vault
  options:
    address: ${VAULT_ADDR_TEST}
  admin_password_hash: secretref:vault:secret/data/node-red#admin-password-hash
observe:
  service_name: gate
  logging:
    enabled: true
    level: critical
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Address() != "0.0.0.0:9000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Upstream.AdminPrefix != "" {
		t.Errorf("AdminPrefix = %q, want empty", cfg.Upstream.AdminPrefix)
	}
	if b := cfg.Upstream.Breaker; !b.Enabled || b.MaxFailures != 2 || b.ResetTimeout != 5*time.Second {
		t.Errorf("Breaker = %+v", b)
	}
	if cfg.Secrets.Options["address"] != "https://vault.internal:8200" {
		t.Errorf("Options = %v", cfg.Secrets.Options)
	}
	if cfg.Secrets.AdminPasswordHash != "secretref:vault:secret/data/node-red#admin-password-hash" {
		t.Errorf("AdminPasswordHash = %q", cfg.Secrets.AdminPasswordHash)
	}
	if cfg.Secrets.AdminUsername != "secretref:file:node-red/admin-username" {
		t.Errorf("unset refs should keep defaults, got %q", cfg.Secrets.AdminUsername)
	}
	if cfg.Observe.ServiceName != "gate" || cfg.Observe.Logging.Level != "critical" {
		t.Errorf("Observe = %+v", cfg.Observe)
	}
	if !cfg.Observe.Metrics.Enabled {
		t.Error("metrics default lost")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantSub string
		wantErr error
	}{
		{name: "missing env", doc: "server:\n  host: ${FLOWGATE_UNSET_HOST}\n", wantErr: secret.ErrMissingEnv},
		{name: "bad yaml", doc: "server: [", wantSub: "parse"},
		{name: "bad port", doc: "server:\n  port: 70000\n", wantSub: "server.port"},
		{name: "bad upstream", doc: "upstream:\n  url: editor:1880\n", wantSub: "upstream.url"},
		{name: "admin prefix metrics", doc: "upstream:\n  admin_prefix: /metrics\n", wantSub: "admin_prefix"},
		{name: "admin prefix relative", doc: "upstream:\n  admin_prefix: red\n", wantSub: "admin_prefix"},
		{name: "negative breaker", doc: "upstream:\n  breaker:\n    max_failures: -1\n", wantSub: "upstream.breaker"},
		{name: "empty ref", doc: "secrets:\n  api_tokens: \"\"\n", wantSub: "secrets.api_tokens"},
		{name: "bad expiry", doc: "session:\n  expiry_seconds: 0\n", wantSub: "session.expiry_seconds"},
		{name: "bad log level", doc: "observe:\n  logging:\n    level: loud\n", wantSub: "observe"},
		{name: "cors without methods", doc: "cors:\n  methods: \"\"\n", wantSub: "cors.methods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantSub != "" && !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = ""
	cfg.Secrets.Provider = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.host", "secrets.provider"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowgate.yaml")
	if err := os.WriteFile(path, []byte("cors:\n  origin: https://ops.example\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.CORS.Origin != "https://ops.example" {
		t.Errorf("Origin = %q", cfg.CORS.Origin)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v", err)
	}
}
