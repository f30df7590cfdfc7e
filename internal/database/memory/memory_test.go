package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/face-gate/internal/database"
)

func TestStore_PutIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.PutIfAbsent(ctx, database.StoredIdentity{Name: "alice", Encoding: []float32{1, 2}}); err != nil {
		t.Fatalf("PutIfAbsent() error = %v", err)
	}

	err := s.PutIfAbsent(ctx, database.StoredIdentity{Name: "alice", Encoding: []float32{9, 9}})
	if !errors.Is(err, database.ErrIdentityExists) {
		t.Fatalf("second PutIfAbsent() error = %v, want ErrIdentityExists", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.Encoding[0] != 1 {
		t.Errorf("Get() = %+v, want original encoding kept", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}
}

func TestStore_EnumerateOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, name := range []string{"carol", "Bob", "alice", "bob"} {
		if err := s.PutIfAbsent(ctx, database.StoredIdentity{Name: name, Encoding: []float32{0}}); err != nil {
			t.Fatalf("PutIfAbsent(%q) error = %v", name, err)
		}
	}

	all, err := s.Enumerate(ctx)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	want := []string{"Bob", "alice", "bob", "carol"}
	if len(all) != len(want) {
		t.Fatalf("Enumerate() returned %d identities, want %d", len(all), len(want))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("Enumerate()[%d] = %q, want %q", i, all[i].Name, name)
		}
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_ = s.PutIfAbsent(ctx, database.StoredIdentity{Name: "alice", Encoding: []float32{1}})

	all, _ := s.Enumerate(ctx)
	all[0].Encoding[0] = 42

	got, _ := s.Get(ctx, "alice")
	if got.Encoding[0] != 1 {
		t.Errorf("stored encoding mutated through snapshot: %v", got.Encoding)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_ = s.PutIfAbsent(ctx, database.StoredIdentity{Name: "alice", Encoding: []float32{1}})

	if err := s.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := s.Has(ctx, "alice"); ok {
		t.Error("Has() = true after Delete")
	}
	if err := s.Delete(ctx, "alice"); !errors.Is(err, database.ErrIdentityNotFound) {
		t.Errorf("Delete() of missing error = %v, want ErrIdentityNotFound", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestStore_ErrorInjection(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")
	s.EnumerateError = boom
	s.PutError = boom

	if _, err := s.Enumerate(ctx); !errors.Is(err, boom) {
		t.Errorf("Enumerate() error = %v, want %v", err, boom)
	}
	if err := s.PutIfAbsent(ctx, database.StoredIdentity{Name: "x"}); !errors.Is(err, boom) {
		t.Errorf("PutIfAbsent() error = %v, want %v", err, boom)
	}
}
