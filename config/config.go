// Package config loads the flowgate configuration file.
//
// The file is YAML. Before parsing, the whole document is expanded with
// secret.ExpandEnvStrict, so ${VAR}, ${VAR:-default}, and $$ work anywhere;
// an unset variable without a default is an error.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/flowgate/breaker"
	"github.com/jonwraymond/flowgate/credential"
	"github.com/jonwraymond/flowgate/observe"
	"github.com/jonwraymond/flowgate/secret"
)

// DefaultPort is used when neither the file nor PORT sets one.
const DefaultPort = 1880

// Config is the complete flowgate configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	CORS     CORSConfig     `yaml:"cors"`
	Editor   EditorConfig   `yaml:"editor"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Secrets  SecretsConfig  `yaml:"secrets"`
	Observe  observe.Config `yaml:"observe"`
}

// ServerConfig is the listener the gate serves on.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SessionConfig is passed to the editor through the admin descriptor.
type SessionConfig struct {
	ExpirySeconds int `yaml:"expiry_seconds"`
}

// CORSConfig is applied to every gated response.
type CORSConfig struct {
	Origin  string `yaml:"origin"`
	Methods string `yaml:"methods"`
}

// EditorConfig is inert editor configuration, passed through unchanged.
type EditorConfig struct {
	DebugMaxLength int    `yaml:"debug_max_length"`
	FlowFile       string `yaml:"flow_file"`
	FlowFilePretty bool   `yaml:"flow_file_pretty"`
}

// UpstreamConfig locates the protected editor service.
type UpstreamConfig struct {
	URL string `yaml:"url"`

	// AdminPrefix is forwarded without the bearer gate; the editor enforces
	// its own admin login there. Empty gates every path.
	AdminPrefix string `yaml:"admin_prefix"`

	// Breaker fails upstream requests fast while the editor is down.
	Breaker breaker.Config `yaml:"breaker"`
}

// SecretsConfig selects the secret provider and the credential references.
type SecretsConfig struct {
	Provider           string         `yaml:"provider"`
	Options            map[string]any `yaml:"options"`
	credential.Sources `yaml:",inline"`
}

// Default returns the built-in configuration. The port honors PORT.
func Default() *Config {
	port := DefaultPort
	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
		port = p
	}

	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{ExpirySeconds: credential.DefaultSessionExpirySeconds},
		CORS: CORSConfig{
			Origin:  "*",
			Methods: "GET,PUT,POST,DELETE",
		},
		Editor: EditorConfig{
			DebugMaxLength: 1000,
			FlowFile:       "flows.json",
			FlowFilePretty: true,
		},
		Upstream: UpstreamConfig{
			URL:         "http://127.0.0.1:1881",
			AdminPrefix: "/red",
			Breaker: breaker.Config{
				Enabled:      true,
				MaxFailures:  breaker.DefaultMaxFailures,
				ResetTimeout: breaker.DefaultResetTimeout,
			},
		},
		Secrets: SecretsConfig{
			Provider: "file",
			Options:  map[string]any{"root": secret.DefaultFileRoot},
			Sources:  credential.DefaultSources(),
		},
		Observe: observe.Config{
			ServiceName: "flowgate",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// LoadFile reads path over Default, expands the environment, and validates.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded, err := secret.ExpandEnvStrict(string(data))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Host == "" {
		errs = append(errs, errors.New("server.host is required"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	if c.Session.ExpirySeconds <= 0 {
		errs = append(errs, fmt.Errorf("session.expiry_seconds must be positive, got %d", c.Session.ExpirySeconds))
	}
	if c.CORS.Origin != "" && c.CORS.Methods == "" {
		errs = append(errs, errors.New("cors.methods is required when cors.origin is set"))
	}
	if c.Editor.DebugMaxLength < 0 {
		errs = append(errs, errors.New("editor.debug_max_length must not be negative"))
	}

	if u, err := url.Parse(c.Upstream.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream.url must be an absolute http(s) URL, got %q", c.Upstream.URL))
	}
	if p := c.Upstream.AdminPrefix; p != "" && (!strings.HasPrefix(p, "/") || p == "/" || p == "/metrics") {
		errs = append(errs, fmt.Errorf("upstream.admin_prefix must be a path below / other than /metrics, got %q", p))
	}
	if b := c.Upstream.Breaker; b.Enabled && (b.MaxFailures < 0 || b.ResetTimeout < 0) {
		errs = append(errs, errors.New("upstream.breaker max_failures and reset_timeout must not be negative"))
	}

	if c.Secrets.Provider == "" {
		errs = append(errs, errors.New("secrets.provider is required"))
	}
	for name, ref := range map[string]string{
		"secrets.admin_username":      c.Secrets.AdminUsername,
		"secrets.admin_password_hash": c.Secrets.AdminPasswordHash,
		"secrets.api_tokens":          c.Secrets.APITokens,
	} {
		if strings.TrimSpace(ref) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	if err := c.Observe.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observe: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Address returns the listen address as host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
