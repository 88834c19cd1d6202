package secret

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/jonwraymond/flowgate/observe"
)

// Validator is implemented by structured secrets that check their own shape.
type Validator interface {
	Validate() error
}

// Loader reads secrets once at startup and never fails hard: every failure
// becomes an absence signal plus an error-level diagnostic naming the
// reference and the cause. Secret values are never logged.
type Loader struct {
	resolver *Resolver
	logger   observe.Logger
}

// NewLoader creates a Loader. A nil logger discards diagnostics.
func NewLoader(resolver *Resolver, logger observe.Logger) *Loader {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Loader{resolver: resolver, logger: logger}
}

// ReadText returns the secret at ref with surrounding whitespace removed.
// Blank content is reported as ErrSecretEmpty.
func (l *Loader) ReadText(ctx context.Context, ref string) (string, error) {
	raw, err := l.resolver.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretEmpty, ref)
	}
	return text, nil
}

// ReadJSON decodes the secret at ref into v. Comments and trailing commas
// are tolerated. If v implements Validator, it is validated after decoding.
// On error the contents of v are unspecified.
func (l *Loader) ReadJSON(ctx context.Context, ref string, v any) error {
	raw, err := l.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	stripped := jsonc.ToJSON([]byte(raw))
	if err := json.Unmarshal(stripped, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSecretMalformed, ref, err)
	}
	if validator, ok := v.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSecretMalformed, ref, err)
		}
	}
	return nil
}

// LoadText is ReadText with failures logged and reported as ("", false).
func (l *Loader) LoadText(ctx context.Context, ref string) (string, bool) {
	text, err := l.ReadText(ctx, ref)
	if err != nil {
		l.logger.Error(ctx, "failed to load secret",
			observe.Field{Key: "ref", Value: ref},
			observe.Field{Key: "error", Value: err},
		)
		return "", false
	}
	return text, true
}
