package secret

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/flowgate/observe"
)

type tokenEntries []struct {
	Token string `json:"token"`
}

func (e tokenEntries) Validate() error {
	for _, t := range e {
		if t.Token == "" {
			return errors.New("entry without token")
		}
	}
	return nil
}

func newTestLoader(t *testing.T, files map[string]string) (*Loader, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeSecret(t, root, rel, content)
	}
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	return NewLoader(NewResolver(NewFileProvider(root)), logger), &buf
}

func TestLoader_LoadText(t *testing.T) {
	l, logs := newTestLoader(t, map[string]string{
		"node-red/admin-username": "\n  operator \t\n",
		"node-red/blank":          "  \n",
	})
	ctx := context.Background()

	got, ok := l.LoadText(ctx, "secretref:file:node-red/admin-username")
	if !ok || got != "operator" {
		t.Fatalf("LoadText() = %q, %v; want operator, true", got, ok)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected diagnostics: %s", logs)
	}

	for _, ref := range []string{"node-red/missing", "node-red/blank", "../escape"} {
		logs.Reset()
		got, ok := l.LoadText(ctx, ref)
		if ok || got != "" {
			t.Errorf("LoadText(%q) = %q, %v; want absent", ref, got, ok)
		}
		out := logs.String()
		if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, ref) {
			t.Errorf("LoadText(%q) diagnostic missing ref or level: %s", ref, out)
		}
	}
}

func TestLoader_ReadJSON(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{
		"good":      `[{"token":"abc123"},{"token":"xyz"}]`,
		"commented": "[\n  // ci runner\n  {\"token\": \"abc123\"},\n]\n",
		"empty":     `[]`,
		"garbage":   `not json`,
		"object":    `{"token":"abc123"}`,
		"no-token":  `[{"name":"x"}]`,
	})
	ctx := context.Background()

	tests := []struct {
		ref     string
		wantErr error
		wantLen int
	}{
		{ref: "good", wantLen: 2},
		{ref: "commented", wantLen: 1},
		{ref: "empty", wantLen: 0},
		{ref: "garbage", wantErr: ErrSecretMalformed},
		{ref: "object", wantErr: ErrSecretMalformed},
		{ref: "no-token", wantErr: ErrSecretMalformed},
		{ref: "missing", wantErr: ErrSecretUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			var entries tokenEntries
			err := l.ReadJSON(ctx, tt.ref, &entries)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadJSON(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadJSON(%q) error = %v", tt.ref, err)
			}
			if len(entries) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(entries), tt.wantLen)
			}
		})
	}
}

func TestLoader_ReadErrors(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{"garbage": "{", "blank": ""})
	ctx := context.Background()

	if _, err := l.ReadText(ctx, "blank"); !errors.Is(err, ErrSecretEmpty) {
		t.Errorf("ReadText(blank) error = %v", err)
	}
	if _, err := l.ReadText(ctx, "missing"); !errors.Is(err, ErrSecretUnreadable) {
		t.Errorf("ReadText(missing) error = %v", err)
	}
	var v []any
	if err := l.ReadJSON(ctx, "garbage", &v); !errors.Is(err, ErrSecretMalformed) {
		t.Errorf("ReadJSON(garbage) error = %v", err)
	}
}

func TestLoader_NeverLogsSecretValues(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{"bad": `[{"token":"super-secret-value"}, oops]`})

	var entries tokenEntries
	err := l.ReadJSON(context.Background(), "bad", &entries)
	if err == nil {
		t.Fatal("expected malformed secret to fail")
	}
	if strings.Contains(err.Error(), "super-secret-value") {
		t.Fatalf("secret value leaked into error: %v", err)
	}
}
