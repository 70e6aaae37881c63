package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobStore is the external document store seen through a small
// interface: put and get by blob id. The rest of the system only ever
// passes ids around.
type BlobStore interface {
	Save(ctx context.Context, id string, r io.Reader) error
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// DiskStore keeps blobs on the local filesystem, one file per id.
type DiskStore struct {
	baseDir string
}

func NewDiskStore(baseDir string) *DiskStore {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	return &DiskStore{baseDir: baseDir}
}

func (s *DiskStore) Save(_ context.Context, id string, r io.Reader) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.baseDir, id)
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *DiskStore) Open(_ context.Context, id string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.baseDir, id))
}
