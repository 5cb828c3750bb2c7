package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps blobs as regular files under a single root directory.
// The directory is shared by all owners; name collisions are prevented by
// the caller generating unique blob names.
type DiskStore struct {
	root string
}

// NewDiskStore resolves dir to an absolute path and creates it if absent.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &DiskStore{root: abs}, nil
}

// Root returns the absolute storage directory.
func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) Save(name string, r io.Reader) (string, int64, error) {
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("close %s: %w", path, err)
	}

	return path, written, nil
}

func (s *DiskStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func (s *DiskStore) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
