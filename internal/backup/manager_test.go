package backup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/clickermsu/leaderboard-go/internal/channel"
	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/storage/memory"
	"github.com/clickermsu/leaderboard-go/internal/storage/snapshot"
)

// fakeBlob is an in-memory stand-in for the channel's document store.
type fakeBlob struct {
	docs   map[string][]byte
	nextID int

	failUpload  bool
	failReplace bool
	failFetch   bool

	uploads  int
	replaces int
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{docs: map[string][]byte{}}
}

func (f *fakeBlob) newFileID() string {
	f.nextID++
	return fmt.Sprintf("file-%d", f.nextID)
}

func (f *fakeBlob) UploadDocument(_ context.Context, chatID int64, _ string, data []byte) (channel.DocumentRef, error) {
	if f.failUpload {
		return channel.DocumentRef{}, errors.New("upload rejected")
	}
	f.uploads++
	id := f.newFileID()
	f.docs[id] = append([]byte(nil), data...)
	return channel.DocumentRef{ChatID: chatID, MessageID: 100 + f.nextID, FileID: id}, nil
}

func (f *fakeBlob) ReplaceDocument(_ context.Context, chatID int64, messageID int, _ string, data []byte) (channel.DocumentRef, error) {
	if f.failReplace {
		return channel.DocumentRef{}, errors.New("edit rejected")
	}
	f.replaces++
	id := f.newFileID()
	f.docs[id] = append([]byte(nil), data...)
	return channel.DocumentRef{ChatID: chatID, MessageID: messageID, FileID: id}, nil
}

func (f *fakeBlob) FetchDocument(_ context.Context, fileID string) ([]byte, error) {
	if f.failFetch {
		return nil, errors.New("channel unreachable")
	}
	data, ok := f.docs[fileID]
	if !ok {
		return nil, errors.New("no such file")
	}
	return data, nil
}

func newTestManager(t *testing.T, blob channel.Blob, table *memory.Table, ptr snapshot.Pointer) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Blob:     blob,
		Registry: table,
		Pointer:  ptr,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func seedTable(t *testing.T, table *memory.Table, users ...domain.User) {
	t.Helper()
	ctx := context.Background()
	for _, u := range users {
		if err := table.Insert(ctx, u); err != nil {
			t.Fatalf("seed %q: %v", u.Username, err)
		}
	}
}

func TestSave_SetsPointerAndRoundTrips(t *testing.T) {
	blob := newFakeBlob()
	table := memory.New()
	seedTable(t, table,
		domain.User{ID: 1, Username: "alice", Password: "pw1"},
		domain.User{ID: 5, Username: "bob", Password: "pw2"},
	)

	m := newTestManager(t, blob, table, snapshot.Pointer{})
	ctx := context.Background()

	ptr, err := m.Save(ctx, 721641425)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ptr.ChatID != 721641425 || !ptr.HasBlob() || !ptr.HasAnchor() {
		t.Fatalf("pointer = %+v", ptr)
	}
	if m.Pointer() != ptr {
		t.Fatal("manager pointer should match the returned pointer")
	}

	// A pull against the fresh pointer reconstructs exactly the pushed set.
	restore := memory.New()
	m2 := newTestManager(t, blob, restore, ptr)
	if err := m2.Pull(ctx); err != nil {
		t.Fatalf("Pull: %v", err)
	}

	want, _ := table.All(ctx)
	got, _ := restore.All(ctx)
	if !got.Equal(want) {
		t.Fatalf("restored = %+v, want %+v", got, want)
	}
}

func TestPush_ReplacesAtAnchorAndUpdatesFileID(t *testing.T) {
	blob := newFakeBlob()
	table := memory.New()
	m := newTestManager(t, blob, table, snapshot.Pointer{})
	ctx := context.Background()

	before, err := m.Save(ctx, 7)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	seedTable(t, table, domain.User{ID: 3, Username: "carol", Password: "pw3"})
	if err := m.Push(ctx); err != nil {
		t.Fatalf("Push: %v", err)
	}

	after := m.Pointer()
	if after.ChatID != before.ChatID || after.MessageID != before.MessageID {
		t.Fatalf("anchor moved: %+v -> %+v", before, after)
	}
	if after.FileID == before.FileID {
		t.Fatal("file id should change on push")
	}
	if blob.replaces != 1 {
		t.Fatalf("replaces = %d, want 1", blob.replaces)
	}
}

func TestPush_WithoutAnchor(t *testing.T) {
	m := newTestManager(t, newFakeBlob(), memory.New(), snapshot.Pointer{})
	err := m.Push(context.Background())
	if !errors.Is(err, domain.ErrPointerUnset) {
		t.Fatalf("Push = %v, want ErrPointerUnset", err)
	}
}

func TestPush_FailureLeavesPointerAndStore(t *testing.T) {
	blob := newFakeBlob()
	table := memory.New()
	seedTable(t, table, domain.User{ID: 1, Username: "alice", Password: "pw1"})

	m := newTestManager(t, blob, table, snapshot.Pointer{})
	ctx := context.Background()

	ptr, err := m.Save(ctx, 7)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	blob.failReplace = true
	err = m.Push(ctx)
	if !errors.Is(err, domain.ErrChannelUnavailable) {
		t.Fatalf("Push = %v, want ErrChannelUnavailable", err)
	}

	if m.Pointer() != ptr {
		t.Fatalf("pointer changed on failed push: %+v", m.Pointer())
	}
	all, _ := table.All(ctx)
	if len(all) != 1 {
		t.Fatalf("store changed on failed push: %+v", all)
	}
}

func TestSave_FailureLeavesPointer(t *testing.T) {
	blob := newFakeBlob()
	blob.failUpload = true
	m := newTestManager(t, blob, memory.New(), snapshot.Pointer{ChatID: 1, MessageID: 2, FileID: "keep"})

	_, err := m.Save(context.Background(), 7)
	if !errors.Is(err, domain.ErrChannelUnavailable) {
		t.Fatalf("Save = %v, want ErrChannelUnavailable", err)
	}
	if m.Pointer().FileID != "keep" {
		t.Fatalf("pointer changed on failed save: %+v", m.Pointer())
	}
}

func TestPull_PointerUnset(t *testing.T) {
	m := newTestManager(t, newFakeBlob(), memory.New(), snapshot.Pointer{})
	err := m.Pull(context.Background())
	if !errors.Is(err, domain.ErrPointerUnset) {
		t.Fatalf("Pull = %v, want ErrPointerUnset", err)
	}
}

func TestPull_FetchFailureDoesNotMutate(t *testing.T) {
	blob := newFakeBlob()
	blob.failFetch = true
	table := memory.New()
	seedTable(t, table, domain.User{ID: 1, Username: "alice", Password: "pw1"})

	m := newTestManager(t, blob, table, snapshot.Pointer{ChatID: 1, MessageID: 2, FileID: "x"})

	err := m.Pull(context.Background())
	if !errors.Is(err, domain.ErrChannelUnavailable) {
		t.Fatalf("Pull = %v, want ErrChannelUnavailable", err)
	}

	all, _ := table.All(context.Background())
	if len(all) != 1 || all[0].Username != "alice" {
		t.Fatalf("store mutated on failed pull: %+v", all)
	}
}

func TestPull_MalformedBlobDoesNotMutate(t *testing.T) {
	blob := newFakeBlob()
	blob.docs["bad"] = []byte("definitely not json")
	table := memory.New()
	seedTable(t, table, domain.User{ID: 1, Username: "alice", Password: "pw1"})

	m := newTestManager(t, blob, table, snapshot.Pointer{ChatID: 1, MessageID: 2, FileID: "bad"})

	err := m.Pull(context.Background())
	if !errors.Is(err, domain.ErrSnapshotMalformed) {
		t.Fatalf("Pull = %v, want ErrSnapshotMalformed", err)
	}

	all, _ := table.All(context.Background())
	if len(all) != 1 {
		t.Fatalf("store mutated on malformed pull: %+v", all)
	}
}

func TestSealedRoundTrip(t *testing.T) {
	sealer, err := snapshot.NewSealer("operator passphrase")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	blob := newFakeBlob()
	table := memory.New()
	seedTable(t, table, domain.User{ID: 9, Username: "dave", Password: "pw9"})

	m, err := NewManager(Config{Blob: blob, Registry: table, Sealer: sealer})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx := context.Background()
	ptr, err := m.Save(ctx, 7)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !snapshot.IsSealed(blob.docs[ptr.FileID]) {
		t.Fatal("stored blob should be sealed")
	}

	restore := memory.New()
	m2, _ := NewManager(Config{Blob: blob, Registry: restore, Pointer: ptr, Sealer: sealer})
	if err := m2.Pull(ctx); err != nil {
		t.Fatalf("Pull: %v", err)
	}

	got, _ := restore.All(ctx)
	if len(got) != 1 || got[0].Username != "dave" {
		t.Fatalf("restored = %+v", got)
	}
}

func TestPull_SealedWithoutSealer(t *testing.T) {
	sealer, _ := snapshot.NewSealer("operator passphrase")
	blob := newFakeBlob()
	table := memory.New()

	m, _ := NewManager(Config{Blob: blob, Registry: table, Sealer: sealer})
	ptr, err := m.Save(context.Background(), 7)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	plainManager := newTestManager(t, blob, memory.New(), ptr)
	err = plainManager.Pull(context.Background())
	if !errors.Is(err, domain.ErrSnapshotMalformed) {
		t.Fatalf("Pull = %v, want ErrSnapshotMalformed", err)
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(Config{Registry: memory.New()}); err == nil {
		t.Fatal("NewManager without blob should fail")
	}
	if _, err := NewManager(Config{Blob: newFakeBlob()}); err == nil {
		t.Fatal("NewManager without registry should fail")
	}
}
