// Package storage persists uploaded product images on local disk or S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bikerlight/store-api/internal/core/ports"
)

// LocalPublicPrefix is where the router serves LocalStore files from.
const LocalPublicPrefix = "/uploads/"

// LocalStore writes images under a directory served as static files.
type LocalStore struct {
	dir string
}

var _ ports.ImageStore = (*LocalStore)(nil)

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("save image: invalid name")
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("save image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return LocalPublicPrefix + name, nil
}
