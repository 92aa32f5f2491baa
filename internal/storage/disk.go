// Package storage holds attachment blobs. The metadata rows live in the
// database; only the bytes go through here.
package storage

import (
	"io"
	"os"
	"path/filepath"
)

type Store interface {
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// DiskStore keeps blobs as flat files under a base directory. Keys are
// generated UUIDs, never user input, so no path traversal is possible.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *DiskStore) Save(key string, r io.Reader) error {
	f, err := os.Create(s.path(key))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (s *DiskStore) Open(key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

func (s *DiskStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
