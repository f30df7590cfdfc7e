package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-gate/internal/database"
	"github.com/pgvector/pgvector-go"
)

// IdentityRepository provides PostgreSQL-backed identity storage
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Enumerate returns every identity ordered by name in byte order.
// A single SELECT runs against one snapshot, so concurrent writes are either
// fully visible or not at all.
func (r *IdentityRepository) Enumerate(ctx context.Context) ([]database.StoredIdentity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, encoding, created_at
		FROM identities
		ORDER BY name COLLATE "C"
	`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var result []database.StoredIdentity
	for rows.Next() {
		var id database.StoredIdentity
		var vec pgvector.Vector
		if err := rows.Scan(&id.Name, &vec, &id.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		id.Encoding = vec.Slice()
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return result, nil
}

// Get retrieves an identity by name, nil if not found
func (r *IdentityRepository) Get(ctx context.Context, name string) (*database.StoredIdentity, error) {
	var id database.StoredIdentity
	var vec pgvector.Vector
	err := r.pool.QueryRow(ctx, `
		SELECT name, encoding, created_at
		FROM identities
		WHERE name = $1
	`, name).Scan(&id.Name, &vec, &id.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	id.Encoding = vec.Slice()
	return &id, nil
}

// Has checks if an identity exists
func (r *IdentityRepository) Has(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM identities WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored identities
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// PutIfAbsent inserts the identity; a name collision leaves the row untouched
// and returns database.ErrIdentityExists.
func (r *IdentityRepository) PutIfAbsent(ctx context.Context, identity database.StoredIdentity) error {
	if len(identity.Encoding) == 0 {
		return errors.New("encoding is empty")
	}
	result, err := r.pool.Exec(ctx, `
		INSERT INTO identities (name, encoding, dim)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`, identity.Name, pgvector.NewVector(identity.Encoding), len(identity.Encoding))
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	if n == 0 {
		return database.ErrIdentityExists
	}
	return nil
}

// Delete removes an identity
func (r *IdentityRepository) Delete(ctx context.Context, name string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM identities WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if n == 0 {
		return database.ErrIdentityNotFound
	}
	return nil
}
