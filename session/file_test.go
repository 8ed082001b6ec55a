package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTripAndPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, "user-storage", testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "user-storage.session"))
	if err != nil {
		t.Fatalf("stat snapshot: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %v", perm)
	}

	got, err := store.Load(ctx, "user-storage")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "t1" || got.User == nil || got.User.Email != "a@b.com" {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestFileStoreMissingAndDelete(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	if _, err := store.Load(ctx, "user-storage"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "user-storage"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestFileStoreRejectsPathNamespaces(t *testing.T) {
	store := NewFileStore(t.TempDir())
	for _, ns := range []string{"", "..", "a/b", `a\b`} {
		if err := store.Save(context.Background(), ns, testSnapshot()); err == nil {
			t.Fatalf("expected error for namespace %q", ns)
		}
	}
}

func TestMemoryStoreNilSaveDeletes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, "ns", testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 namespace, got %d", store.Len())
	}
	if err := store.Save(ctx, "ns", nil); err != nil {
		t.Fatalf("nil save: %v", err)
	}
	if _, err := store.Load(ctx, "ns"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected snapshot removed, got %v", err)
	}
}
