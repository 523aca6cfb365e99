package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidStorePath = errors.New("invalid store path")

// ObjectStore keeps uploaded files on disk under
// <root>/<owner>/<entity>/<file>, the same path convention the API exposes.
type ObjectStore struct {
	root string
}

func NewObjectStore(root string) (*ObjectStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object store root: %w", err)
	}
	return &ObjectStore{root: root}, nil
}

// Path builds the store path for an object. Each segment is validated so a
// crafted file name cannot escape the root.
func (s *ObjectStore) Path(owner, entity, file string) (string, error) {
	for _, segment := range []string{owner, entity, file} {
		if segment == "" || strings.ContainsAny(segment, `/\`) || segment == "." || segment == ".." {
			return "", ErrInvalidStorePath
		}
	}
	return filepath.Join(owner, entity, file), nil
}

// Put writes the object, creating parent directories as needed.
func (s *ObjectStore) Put(storePath string, r io.Reader) (int64, error) {
	full := filepath.Join(s.root, storePath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("failed to create object file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	return n, nil
}

// Open returns a reader over the stored object. The caller closes it.
func (s *ObjectStore) Open(storePath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, storePath))
}

// Delete removes the object. Missing objects are not an error so metadata
// cleanup stays idempotent.
func (s *ObjectStore) Delete(storePath string) error {
	err := os.Remove(filepath.Join(s.root, storePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
