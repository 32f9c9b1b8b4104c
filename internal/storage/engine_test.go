package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/clickermsu/leaderboard-go/internal/core/domain"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngine_InsertFindDelete(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	if err := e.Insert(ctx, domain.User{ID: 7, Username: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	u, err := e.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("ID = %d", u.ID)
	}

	n, err := e.DeleteByID(ctx, 7)
	if err != nil || n != 1 {
		t.Fatalf("DeleteByID = (%d, %v)", n, err)
	}
	if _, err := e.FindByID(ctx, 7); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("FindByID after delete = %v", err)
	}
}

func TestEngine_ConflictDoesNotPersist(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	e.Insert(ctx, domain.User{ID: 1, Username: "alice", Password: "pw1"})

	err := e.Insert(ctx, domain.User{ID: 2, Username: "alice", Password: "pw2"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("Insert = %v, want ErrUsernameTaken", err)
	}
	if e.Len() != 1 {
		t.Fatalf("Len = %d, want 1", e.Len())
	}
}

func TestEngine_ReplaceAllShrinksStore(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	e.Insert(ctx, domain.User{ID: 1, Username: "a"})
	e.Insert(ctx, domain.User{ID: 2, Username: "b"})
	e.Insert(ctx, domain.User{ID: 3, Username: "c"})

	snap := domain.Snapshot{{ID: 9, Username: "only"}}
	if err := e.ReplaceAll(ctx, snap); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	all, _ := e.All(ctx)
	if !all.Equal(snap) {
		t.Fatalf("All = %+v, want %+v", all, snap)
	}
}

func TestEngine_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	e, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e.Insert(ctx, domain.User{ID: 5, Username: "bob", Password: "pw2"})
	e.Insert(ctx, domain.User{ID: 1, Username: "alice", Password: "pw1"})
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	all, _ := reopened.All(ctx)
	want := domain.Snapshot{
		{ID: 5, Username: "bob", Password: "pw2"},
		{ID: 1, Username: "alice", Password: "pw1"},
	}
	if !all.Equal(want) {
		t.Fatalf("All after reopen = %+v, want %+v (insertion order preserved)", all, want)
	}
}
