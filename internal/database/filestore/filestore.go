// Package filestore keeps one JSON document per identity in a directory.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-gate/internal/database"
)

const fileExt = ".json"

// Store is a directory-backed implementation of database.IdentityWriter.
// Each identity is written to a temp file and hard-linked into place, so a
// reader never sees a partial document and a taken name is never replaced.
type Store struct {
	dir string
}

type document struct {
	Name      string    `json:"name"`
	Encoding  []float32 `json:"encoding"`
	CreatedAt time.Time `json:"created_at"`
}

// New opens (and creates if needed) a directory-backed store.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("encodings directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create encodings directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+fileExt)
}

func (s *Store) read(path string) (*database.StoredIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &database.StoredIdentity{Name: doc.Name, Encoding: doc.Encoding, CreatedAt: doc.CreatedAt}, nil
}

// Enumerate returns every identity ordered by name
func (s *Store) Enumerate(ctx context.Context) ([]database.StoredIdentity, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read encodings directory: %w", err)
	}

	result := make([]database.StoredIdentity, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := s.read(filepath.Join(s.dir, e.Name()))
		if errors.Is(err, fs.ErrNotExist) {
			// removed between ReadDir and ReadFile
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *id)
	}
	slices.SortFunc(result, func(a, b database.StoredIdentity) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// Get retrieves an identity by name, nil if not found
func (s *Store) Get(ctx context.Context, name string) (*database.StoredIdentity, error) {
	id, err := s.read(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return id, nil
}

// Has checks if an identity exists
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat identity: %w", err)
	}
	return true, nil
}

// Count returns the number of stored identities
func (s *Store) Count(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read encodings directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileExt) {
			n++
		}
	}
	return n, nil
}

// PutIfAbsent stores the identity unless the name is taken
func (s *Store) PutIfAbsent(ctx context.Context, identity database.StoredIdentity) error {
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(document{
		Name:      identity.Name,
		Encoding:  identity.Encoding,
		CreatedAt: identity.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	tmp := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, s.path(identity.Name)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return database.ErrIdentityExists
		}
		return fmt.Errorf("link identity: %w", err)
	}
	return nil
}

// Delete removes an identity
func (s *Store) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return database.ErrIdentityNotFound
	}
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}
