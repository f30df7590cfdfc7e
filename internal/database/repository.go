package database

import (
	"context"
)

// IdentityReader provides read-only access to enrolled identities
type IdentityReader interface {
	// Enumerate returns every stored identity ordered by name ascending (byte-wise).
	// The returned slice is a consistent snapshot; no entry is observed half-written.
	Enumerate(ctx context.Context) ([]StoredIdentity, error)
	// Get retrieves an identity by name, returns nil if not found
	Get(ctx context.Context, name string) (*StoredIdentity, error)
	// Has checks if an identity with the given name exists
	Has(ctx context.Context, name string) (bool, error)
	// Count returns the number of stored identities
	Count(ctx context.Context) (int, error)
}

// IdentityWriter provides write access to enrolled identities.
// There is no update: an identity is created once and removed by cleanup.
type IdentityWriter interface {
	IdentityReader

	// PutIfAbsent stores the identity unless the name is taken, in which case it
	// returns ErrIdentityExists and leaves the stored entry untouched.
	PutIfAbsent(ctx context.Context, identity StoredIdentity) error

	// Delete removes an identity. Returns ErrIdentityNotFound if it does not exist.
	Delete(ctx context.Context, name string) error
}
