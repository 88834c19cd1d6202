package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/flowgate/observe"
	"github.com/jonwraymond/flowgate/secret"
)

type logLine struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

func loadFrom(t *testing.T, files map[string]string) (*Set, []logLine) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	loader := secret.NewLoader(secret.NewResolver(secret.NewFileProvider(root)), logger)
	set := Load(context.Background(), loader, DefaultSources(), logger)

	var lines []logLine
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var l logLine
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			t.Fatalf("bad log line %q: %v", raw, err)
		}
		lines = append(lines, l)
	}
	return set, lines
}

func hasLevel(lines []logLine, level, msgPart string) bool {
	for _, l := range lines {
		if l.Level == level && strings.Contains(l.Msg, msgPart) {
			return true
		}
	}
	return false
}

func TestLoad_AllPresent(t *testing.T) {
	set, lines := loadFrom(t, map[string]string{
		"node-red/admin-username":      " operator\n",
		"node-red/admin-password-hash": "$2b$08$abcdefghijklmnopqrstuv\n",
		"node-red/api-tokens":          `[{"token":"abc123"},{"token":"xyz","name":"prometheus","scopes":["metrics"]}]`,
	})

	if set.AdminUsername() != "operator" {
		t.Errorf("AdminUsername() = %q", set.AdminUsername())
	}
	if hash, ok := set.AdminPasswordHash(); !ok || hash != "$2b$08$abcdefghijklmnopqrstuv" {
		t.Errorf("AdminPasswordHash() = %q, %v", hash, ok)
	}
	tokens := set.APITokens()
	if len(tokens) != 2 || tokens[0].Token != "abc123" || tokens[1].Name != "prometheus" {
		t.Errorf("APITokens() = %+v", tokens)
	}
	if hasLevel(lines, "critical", "") || hasLevel(lines, "warn", "") {
		t.Errorf("unexpected diagnostics: %+v", lines)
	}
}

func TestLoad_MissingPasswordHash(t *testing.T) {
	set, lines := loadFrom(t, map[string]string{
		"node-red/api-tokens": `[{"token":"abc123"}]`,
	})

	if set.AdminUsername() != DefaultAdminUsername {
		t.Errorf("AdminUsername() = %q, want default", set.AdminUsername())
	}
	if _, ok := set.AdminAuth(); ok {
		t.Error("admin descriptor present without a password hash")
	}
	if !hasLevel(lines, "critical", "INSECURE") {
		t.Errorf("missing critical diagnostic: %+v", lines)
	}
	if set.TokenCount() != 1 {
		t.Errorf("TokenCount() = %d", set.TokenCount())
	}
}

func TestLoad_TokenFailuresBecomeEmpty(t *testing.T) {
	tests := []struct {
		name      string
		tokens    *string
		wantMsg   string
		wantError string
	}{
		{name: "missing", wantMsg: "No API tokens", wantError: "unreadable"},
		{name: "empty list", tokens: ptr(`[]`), wantMsg: "No API tokens"},
		{name: "malformed", tokens: ptr("{not json"), wantMsg: "malformed and was dropped entirely"},
		{name: "wrong shape", tokens: ptr(`{"token":"abc123"}`), wantMsg: "malformed and was dropped entirely"},
		{name: "entry without token", tokens: ptr(`[{"token":"abc123"},{"name":"x"}]`), wantMsg: "malformed and was dropped entirely", wantError: "entry 1 has no token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{"node-red/admin-password-hash": "hash"}
			if tt.tokens != nil {
				files["node-red/api-tokens"] = *tt.tokens
			}
			set, lines := loadFrom(t, files)

			if got := set.APITokens(); len(got) != 0 {
				t.Errorf("APITokens() = %+v, want empty", got)
			}

			var warns []logLine
			for _, l := range lines {
				switch l.Level {
				case "warn":
					warns = append(warns, l)
				case "error", "critical":
					t.Errorf("unexpected %s diagnostic: %+v", l.Level, l)
				}
			}
			if len(warns) != 1 {
				t.Fatalf("got %d warnings, want exactly one: %+v", len(warns), warns)
			}
			if !strings.Contains(warns[0].Msg, tt.wantMsg) {
				t.Errorf("warning = %q, want it to mention %q", warns[0].Msg, tt.wantMsg)
			}
			if !strings.Contains(warns[0].Error, tt.wantError) {
				t.Errorf("warning error = %q, want it to mention %q", warns[0].Error, tt.wantError)
			}
		})
	}
}

func TestLoad_NothingPresent(t *testing.T) {
	set, lines := loadFrom(t, nil)

	if set.AdminUsername() != DefaultAdminUsername {
		t.Errorf("AdminUsername() = %q", set.AdminUsername())
	}
	if _, ok := set.AdminPasswordHash(); ok {
		t.Error("password hash present")
	}
	if set.TokenCount() != 0 {
		t.Error("tokens present")
	}
	if !hasLevel(lines, "critical", "INSECURE") || !hasLevel(lines, "warn", "No API tokens") {
		t.Errorf("missing diagnostics: %+v", lines)
	}
	if !hasLevel(lines, "info", "credentials loaded") {
		t.Errorf("missing summary line: %+v", lines)
	}
}

func ptr(s string) *string { return &s }
