package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const providerFile = "file"

// FileConfig describes where file secrets live.
type FileConfig struct {
	// Dir is the root directory relative references resolve against.
	// Lab deployments typically mount credentials there read-only.
	Dir string
}

// FileResolver reads secrets from files on disk, one value per file.
type FileResolver struct {
	config FileConfig
}

// NewFileResolver builds a resolver using the provided config.
func NewFileResolver(cfg FileConfig) *FileResolver {
	return &FileResolver{config: cfg}
}

// Resolve implements the Resolver interface.
func (r *FileResolver) Resolve(_ context.Context, ref string) (string, error) {
	reference, err := Parse(ref)
	if err != nil {
		return "", err
	}
	if reference.Provider != providerFile {
		return "", fmt.Errorf("file resolver cannot handle provider %q", reference.Provider)
	}

	path, err := r.resolvePath(reference)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file %s: %w", path, err)
	}

	// Trailing newlines from echo-created files are never part of the
	// secret.
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (r *FileResolver) resolvePath(ref *Reference) (string, error) {
	if len(ref.Segments) == 0 {
		return "", fmt.Errorf("file secret %q missing path", ref.Raw)
	}

	path := filepath.Join(ref.Segments...)
	dir := strings.TrimSpace(r.config.Dir)
	if dir == "" {
		return "", fmt.Errorf("file secret %q: no secret directory configured", ref.Raw)
	}

	full := filepath.Join(dir, path)

	// Keep references inside the configured directory.
	cleanDir := filepath.Clean(dir)
	if full != cleanDir && !strings.HasPrefix(full, cleanDir+string(filepath.Separator)) {
		return "", fmt.Errorf("file secret %q escapes the secret directory", ref.Raw)
	}

	return full, nil
}
