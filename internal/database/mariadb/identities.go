package mariadb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/face-gate/internal/database"
)

// duplicate entry for key
const errDupEntry = 1062

// IdentityRepository provides MariaDB-backed identity storage.
// Encodings are stored as a JSON float list.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func scanIdentity(scan func(dest ...any) error) (database.StoredIdentity, error) {
	var id database.StoredIdentity
	var data []byte
	if err := scan(&id.Name, &data, &id.CreatedAt); err != nil {
		return id, err
	}
	if err := json.Unmarshal(data, &id.Encoding); err != nil {
		return id, fmt.Errorf("unmarshal encoding of %s: %w", id.Name, err)
	}
	return id, nil
}

// Enumerate returns every identity ordered by name
func (r *IdentityRepository) Enumerate(ctx context.Context) ([]database.StoredIdentity, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT name, encoding, created_at FROM identities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var result []database.StoredIdentity
	for rows.Next() {
		id, err := scanIdentity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return result, nil
}

// Get retrieves an identity by name, nil if not found
func (r *IdentityRepository) Get(ctx context.Context, name string) (*database.StoredIdentity, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT name, encoding, created_at FROM identities WHERE name = ?`, name)
	id, err := scanIdentity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return &id, nil
}

// Has checks if an identity exists
func (r *IdentityRepository) Has(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored identities
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// PutIfAbsent inserts the identity. A primary key collision is reported as
// database.ErrIdentityExists.
func (r *IdentityRepository) PutIfAbsent(ctx context.Context, identity database.StoredIdentity) error {
	data, err := json.Marshal(identity.Encoding)
	if err != nil {
		return fmt.Errorf("marshal encoding: %w", err)
	}

	_, err = r.pool.db.ExecContext(ctx,
		`INSERT INTO identities (name, encoding, dim) VALUES (?, ?, ?)`,
		identity.Name, data, len(identity.Encoding))
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == errDupEntry {
			return database.ErrIdentityExists
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// Delete removes an identity
func (r *IdentityRepository) Delete(ctx context.Context, name string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM identities WHERE name = ?`, name)
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
