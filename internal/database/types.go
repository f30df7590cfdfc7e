package database

import (
	"errors"
	"time"

	"github.com/kozaktomas/face-gate/internal/facematch"
)

var (
	// ErrIdentityExists is returned by PutIfAbsent when the name is already stored
	ErrIdentityExists = errors.New("identity already exists")
	// ErrIdentityNotFound is returned by Delete when the name is not stored
	ErrIdentityNotFound = errors.New("identity not found")
)

// StoredIdentity represents an enrolled identity and its face encoding
type StoredIdentity struct {
	Name      string
	Encoding  []float32
	CreatedAt time.Time
}

// Entry converts the stored identity into the matcher's view of it.
func (s StoredIdentity) Entry() facematch.Entry {
	return facematch.Entry{Name: s.Name, Encoding: facematch.Encoding(s.Encoding)}
}

// Entries converts a store snapshot for the matcher and clusterer.
func Entries(identities []StoredIdentity) []facematch.Entry {
	entries := make([]facematch.Entry, len(identities))
	for i := range identities {
		entries[i] = identities[i].Entry()
	}
	return entries
}
