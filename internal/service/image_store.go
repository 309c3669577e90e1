package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded image bytes and returns an opaque path that
// is recorded on the ImageRef.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType, ext string) (string, error)
	Delete(ctx context.Context, path string) error
}

// imageFileName returns a collision-free file name such as "image_<hex>.png".
func imageFileName(ext string) string {
	return "image_" + strings.ReplaceAll(uuid.New().String(), "-", "") + ext
}

// LocalImageStore writes images into a directory on local disk.
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates a LocalImageStore rooted at dir.
func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{dir: dir}
}

// Save writes data to a new file and returns its server-relative path.
func (s *LocalImageStore) Save(_ context.Context, data []byte, _ string, ext string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	path := filepath.Join(s.dir, imageFileName(ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return filepath.ToSlash(path), nil
}

// Delete removes a previously saved file. A missing file is not an error.
func (s *LocalImageStore) Delete(_ context.Context, path string) error {
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
