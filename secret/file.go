package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileRoot is where the secret-provisioning service mounts secrets.
const DefaultFileRoot = "/run/secrets"

// FileProvider reads secrets from files under a root directory.
// References are paths relative to the root; absolute paths are accepted
// only when they lie inside it.
type FileProvider struct {
	root string
}

// NewFileProvider creates a FileProvider rooted at root, or DefaultFileRoot if empty.
func NewFileProvider(root string) *FileProvider {
	if root == "" {
		root = DefaultFileRoot
	}
	return &FileProvider{root: filepath.Clean(root)}
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Root returns the directory secrets are read from.
func (p *FileProvider) Root() string { return p.root }

// Resolve returns the raw content of the file named by ref.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := p.relative(ref)
	if err != nil {
		return "", err
	}

	root, err := os.OpenRoot(p.root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSecretUnreadable, ref, err)
	}
	defer root.Close()

	data, err := root.ReadFile(rel)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSecretUnreadable, ref, err)
	}
	return string(data), nil
}

func (p *FileProvider) relative(ref string) (string, error) {
	rel := ref
	if filepath.IsAbs(ref) {
		r, err := filepath.Rel(p.root, ref)
		if err != nil {
			return "", fmt.Errorf("%w: %w: %s", ErrSecretUnreadable, ErrRefEscapesRoot, ref)
		}
		rel = r
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %w: %s", ErrSecretUnreadable, ErrRefEscapesRoot, ref)
	}
	return rel, nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

var _ Provider = (*FileProvider)(nil)
