// Package local keeps objects as files under one directory. It backs the
// development setup where no bucket is configured.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lbs-connect/internal/shared/storage/object"
)

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Put writes r to a temporary file and renames it over key, so readers never
// see a partial CV.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dst, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("local: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("local: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("local: write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("local: rename: %w", err)
	}
	return n, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
	}
	return f, err
}

// path maps key inside dir. Keys that would escape it are rejected.
func (s *Store) path(key string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if rel == "." || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("local: invalid key %q", key)
	}
	return filepath.Join(s.dir, rel), nil
}

var _ object.Store = (*Store)(nil)
