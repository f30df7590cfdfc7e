// Package memory provides an in-process identity store used by tests and
// ephemeral servers.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/face-gate/internal/database"
)

// Store is an in-memory implementation of database.IdentityWriter
type Store struct {
	mu         sync.RWMutex
	identities map[string]database.StoredIdentity

	// Error injection
	EnumerateError error
	GetError       error
	HasError       error
	CountError     error
	PutError       error
	DeleteError    error
}

// NewStore creates an empty in-memory identity store
func NewStore() *Store {
	return &Store{
		identities: make(map[string]database.StoredIdentity),
	}
}

// Enumerate returns a copy of every identity ordered by name
func (s *Store) Enumerate(ctx context.Context) ([]database.StoredIdentity, error) {
	if s.EnumerateError != nil {
		return nil, s.EnumerateError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]database.StoredIdentity, 0, len(s.identities))
	for _, id := range s.identities {
		result = append(result, clone(id))
	}
	slices.SortFunc(result, func(a, b database.StoredIdentity) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// Get retrieves an identity by name
func (s *Store) Get(ctx context.Context, name string) (*database.StoredIdentity, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[name]
	if !ok {
		return nil, nil
	}
	c := clone(id)
	return &c, nil
}

// Has checks if an identity exists
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if s.HasError != nil {
		return false, s.HasError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.identities[name]
	return ok, nil
}

// Count returns the number of stored identities
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.CountError != nil {
		return 0, s.CountError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}

// PutIfAbsent stores the identity unless the name is taken
func (s *Store) PutIfAbsent(ctx context.Context, identity database.StoredIdentity) error {
	if s.PutError != nil {
		return s.PutError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.Name]; ok {
		return database.ErrIdentityExists
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}
	s.identities[identity.Name] = clone(identity)
	return nil
}

// Delete removes an identity
func (s *Store) Delete(ctx context.Context, name string) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[name]; !ok {
		return database.ErrIdentityNotFound
	}
	delete(s.identities, name)
	return nil
}

func clone(id database.StoredIdentity) database.StoredIdentity {
	id.Encoding = slices.Clone(id.Encoding)
	return id
}
