//go:build integration

package mariadb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/face-gate/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mariadb:11",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_USER":          "test",
			"MARIADB_PASSWORD":      "test",
			"MARIADB_DATABASE":      "testdb",
			"MARIADB_ROOT_PASSWORD": "root",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("test:test@tcp(%s:%s)/testdb", host, port.Port())

	// the port opens before the server accepts logins
	var pool *Pool
	for range 30 {
		pool, err = NewPool(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.EnsureSchema(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	encoding := []float32{0.125, -0.5, 1}

	t.Run("PutAndGet", func(t *testing.T) {
		if err := repo.PutIfAbsent(ctx, database.StoredIdentity{Name: "alice", Encoding: encoding}); err != nil {
			t.Fatalf("Failed to put identity: %v", err)
		}
		got, err := repo.Get(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get identity: %v", err)
		}
		if got == nil || len(got.Encoding) != 3 || got.Encoding[1] != -0.5 {
			t.Errorf("Get() = %+v", got)
		}
	})

	t.Run("DuplicateName", func(t *testing.T) {
		err := repo.PutIfAbsent(ctx, database.StoredIdentity{Name: "alice", Encoding: []float32{9}})
		if !errors.Is(err, database.ErrIdentityExists) {
			t.Fatalf("Expected ErrIdentityExists, got %v", err)
		}
	})

	t.Run("EnumerateByteOrder", func(t *testing.T) {
		for _, name := range []string{"bob", "Alice"} {
			if err := repo.PutIfAbsent(ctx, database.StoredIdentity{Name: name, Encoding: encoding}); err != nil {
				t.Fatalf("Failed to put %s: %v", name, err)
			}
		}
		all, err := repo.Enumerate(ctx)
		if err != nil {
			t.Fatalf("Failed to enumerate: %v", err)
		}
		want := []string{"Alice", "alice", "bob"}
		if len(all) != len(want) {
			t.Fatalf("Expected %d identities, got %d", len(want), len(all))
		}
		for i := range want {
			if all[i].Name != want[i] {
				t.Errorf("Enumerate()[%d] = %q, want %q", i, all[i].Name, want[i])
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "bob"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if err := repo.Delete(ctx, "bob"); !errors.Is(err, database.ErrIdentityNotFound) {
			t.Errorf("Expected ErrIdentityNotFound, got %v", err)
		}
		if n, _ := repo.Count(ctx); n != 2 {
			t.Errorf("Count() = %d, want 2", n)
		}
	})
}
