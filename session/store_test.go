package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "ps", time.Hour)
	return store, rdb, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testSnapshot() *Snapshot {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Snapshot{
		Token: "t1",
		User: &User{
			ID:          "1",
			Email:       "a@b.com",
			DisplayName: "Studio A",
			Role:        role.Studio,
			Plan:        "pro",
			Credits:     120,
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, _, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "user-storage", testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx, "user-storage")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := testSnapshot()
	if got.Token != want.Token {
		t.Fatalf("token = %q, want %q", got.Token, want.Token)
	}
	if got.User == nil || *got.User != *want.User {
		t.Fatalf("user = %+v, want %+v", got.User, want.User)
	}
	if got.SavedAt.IsZero() {
		t.Fatal("expected SavedAt to be stamped on save")
	}
}

func TestStoreLoadMissingNamespace(t *testing.T) {
	store, _, _, done := newSessionStoreTest(t)
	defer done()

	_, err := store.Load(context.Background(), "nobody")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestStoreSaveAppliesTTL(t *testing.T) {
	store, _, mr, done := newSessionStoreTest(t)
	defer done()

	if err := store.Save(context.Background(), "user-storage", testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("ps:user-storage"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Load(context.Background(), "user-storage"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected expired snapshot to be gone, got %v", err)
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, rdb, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "user-storage", testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "user-storage"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "user-storage"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if n := rdb.Exists(ctx, store.key("user-storage")).Val(); n != 0 {
		t.Fatalf("expected key gone, exists=%d", n)
	}
}

func TestStoreLoadMigratesLegacySchema(t *testing.T) {
	store, rdb, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	legacy := encodeLegacyV1(t, "t-old", &User{ID: "7", Email: "old@b.com", DisplayName: "Old", Role: role.Admin})
	key := store.key("user-storage")
	if err := rdb.Set(ctx, key, legacy, 30*time.Minute).Err(); err != nil {
		t.Fatalf("seed legacy snapshot: %v", err)
	}

	snap, err := store.Load(ctx, "user-storage")
	if err != nil {
		t.Fatalf("load legacy: %v", err)
	}
	if snap.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected migrated schema %d, got %d", CurrentSchemaVersion, snap.SchemaVersion)
	}
	if snap.Token != "t-old" || snap.User == nil || snap.User.Role != role.Admin {
		t.Fatalf("unexpected migrated snapshot %+v", snap)
	}

	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		t.Fatalf("read migrated blob: %v", err)
	}
	if raw[0] != CurrentSchemaVersion {
		t.Fatalf("expected blob rewritten at v%d, got v%d", CurrentSchemaVersion, raw[0])
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("expected remaining ttl preserved, got %v", ttl)
	}
}

func TestStoreUnavailableWrapsSentinel(t *testing.T) {
	store, _, mr, done := newSessionStoreTest(t)
	defer done()
	mr.Close()

	err := store.Save(context.Background(), "user-storage", testSnapshot())
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ping failure, got %v", err)
	}
}
