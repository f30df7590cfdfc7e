// Package photos stores the reference photo of each enrolled identity.
package photos

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// ErrPhotoNotFound is returned by Get when no photo is stored for the name
var ErrPhotoNotFound = errors.New("photo not found")

// Store keeps one JPEG per identity name in a directory
type Store struct {
	dir string
}

// NewStore opens (and creates if needed) the photo directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("photos directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photos directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file path used for the given identity name.
// Names are path-escaped so they can never leave the directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+".jpg")
}

// Put writes the photo atomically, replacing any previous one.
func (s *Store) Put(name string, data []byte) error {
	if err := renameio.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write photo: %w", err)
	}
	return nil
}

// Get returns the stored photo or ErrPhotoNotFound.
func (s *Store) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return data, nil
}

// Has reports whether a photo is stored for the name.
func (s *Store) Has(name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat photo: %w", err)
	}
	return true, nil
}

// Delete removes the photo. Deleting a missing photo is not an error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
