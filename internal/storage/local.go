package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalRoute is where the server exposes UploadDir as static files.
const LocalRoute = "/uploads"

// Local writes objects under a directory on disk. URLs are public and
// unsigned; the server mounts the directory at LocalRoute.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory the static handler should serve.
func (l *Local) Root() string { return l.root }

// path resolves key under root and refuses keys that escape it.
func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}

func (l *Local) Upload(_ context.Context, key string, r io.Reader, _ string, _ int64) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return err
	}
	return f.Close()
}

func (l *Local) URL(_ context.Context, key string) (string, error) {
	if _, err := l.path(key); err != nil {
		return "", err
	}
	return l.baseURL + "/" + strings.TrimLeft(key, "/"), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) BulkDelete(ctx context.Context, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := l.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
