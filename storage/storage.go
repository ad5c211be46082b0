package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BlobStore stores report images and returns an opaque locator for them.
type BlobStore interface {
	Put(data []byte, suggestedName string) (string, error)
}

// DiskStore writes report images under a local directory. The returned
// locator is the file path relative to the process working directory, which
// is also how the path is served back to clients.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a disk-backed blob store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Put(data []byte, suggestedName string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format(time.RFC3339Nano), filepath.Base(suggestedName))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return path, nil
}
