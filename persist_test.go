package portalAuth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

func newRedisPersister(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return session.NewStore(rdb, "ps", time.Hour), mr
}

func TestSessionSurvivesRestartRedis(t *testing.T) {
	persister, mr := newRedisPersister(t)
	api := newFakeAPI()

	first := newTestStore(t, api, persister, nil)
	if res := first.Login(context.Background(), Credentials{Email: "a@b.com"}); !res.OK() {
		t.Fatalf("login: %v", res.Err)
	}
	if err := first.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !mr.Exists("ps:" + DefaultNamespace) {
		t.Fatalf("expected snapshot under ps:%s", DefaultNamespace)
	}

	second := newTestStore(t, api, persister, func(b *Builder) {
		cfg := DefaultConfig()
		cfg.Persistence.RestoreOnBuild = true
		b.WithConfig(cfg)
	})
	if second.Token() != "t1" {
		t.Fatalf("expected restored token, got %q", second.Token())
	}
	u, ok := second.User()
	if !ok || u.Role != role.Studio || u.Credits != 120 {
		t.Fatalf("unexpected restored user %+v", u)
	}
	if second.Loading() {
		t.Fatal("restore must not leave loading set")
	}
}

func TestSessionSurvivesRestartFile(t *testing.T) {
	persister := session.NewFileStore(t.TempDir())
	api := newFakeAPI()

	first := newTestStore(t, api, persister, nil)
	first.Login(context.Background(), Credentials{Email: "a@b.com"})
	_ = first.Close(context.Background())

	second := newTestStore(t, api, persister, nil)
	if second.Phase() != PhaseAnonymous {
		t.Fatal("store must start empty until Restore")
	}
	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if second.Phase() != PhaseAuthenticated || second.Token() != "t1" {
		t.Fatalf("unexpected restored state %+v", second.Snapshot())
	}
}

func TestLongDisplayNamePersists(t *testing.T) {
	api := newFakeAPI()
	api.me.DisplayName = strings.Repeat("写真スタジオ", 15)
	mem := session.NewMemoryStore()
	s := newTestStore(t, api, mem, nil)

	if res := s.Login(context.Background(), Credentials{Email: "a@b.com"}); !res.OK() {
		t.Fatalf("login: %v", res.Err)
	}
	if n := s.Metrics().Value(MetricPersistFailure); n != 0 {
		t.Fatalf("expected no persist failures, got %d", n)
	}

	snap, err := mem.Load(context.Background(), DefaultNamespace)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.User == nil || snap.User.DisplayName != api.me.DisplayName {
		t.Fatalf("user not persisted with session: %+v", snap.User)
	}
}

func TestRestoreMissingSnapshotIsNotAnError(t *testing.T) {
	s := newTestStore(t, newFakeAPI(), session.NewMemoryStore(), nil)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("expected nil for missing snapshot, got %v", err)
	}
	if s.Phase() != PhaseAnonymous {
		t.Fatalf("expected anonymous, got %s", s.Phase())
	}
}

// slowLoadPersister blocks Load until release is closed.
type slowLoadPersister struct {
	*session.MemoryStore
	loading chan struct{}
	release chan struct{}
}

func (p *slowLoadPersister) Load(ctx context.Context, namespace string) (*session.Snapshot, error) {
	close(p.loading)
	<-p.release
	return p.MemoryStore.Load(ctx, namespace)
}

func TestLoginInFlightSurvivesRestore(t *testing.T) {
	mem := session.NewMemoryStore()
	if err := mem.Save(context.Background(), DefaultNamespace, &session.Snapshot{Token: "old"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	api := newFakeAPI()
	release := make(chan struct{})
	api.block["a@b.com"] = release
	s := newTestStore(t, api, mem, nil)

	done := make(chan Result[TokenPayload], 1)
	go func() {
		done <- s.Login(context.Background(), Credentials{Email: "a@b.com"})
	}()
	deadline := time.Now().Add(2 * time.Second)
	for api.count("login") < 1 {
		if time.Now().After(deadline) {
			t.Fatal("login never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.Token() != "old" {
		t.Fatalf("expected restored token, got %q", s.Token())
	}
	close(release)

	res := <-done
	if !res.OK() {
		t.Fatalf("login overlapping restore must succeed, got %v", res.Err)
	}
	if s.Token() != "t1" || s.Phase() != PhaseAuthenticated {
		t.Fatalf("expected login state to win, got %+v", s.Snapshot())
	}
}

func TestRestoreSkippedWhenSessionChangesDuringLoad(t *testing.T) {
	slow := &slowLoadPersister{
		MemoryStore: session.NewMemoryStore(),
		loading:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	if err := slow.Save(context.Background(), DefaultNamespace, &session.Snapshot{Token: "old"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := newTestStore(t, newFakeAPI(), slow, nil)

	restored := make(chan error, 1)
	go func() { restored <- s.Restore(context.Background()) }()
	<-slow.loading

	if res := s.Login(context.Background(), Credentials{Email: "a@b.com"}); !res.OK() {
		t.Fatalf("login: %v", res.Err)
	}
	close(slow.release)
	if err := <-restored; err != nil {
		t.Fatalf("restore: %v", err)
	}

	if s.Token() != "t1" {
		t.Fatalf("restore overwrote a newer login, token=%q", s.Token())
	}
	if s.Metrics().Value(MetricRestoreSuccess) != 0 {
		t.Fatal("skipped restore must not count as success")
	}
}

func TestRefreshFailureRemovesPersistedSnapshot(t *testing.T) {
	persister, mr := newRedisPersister(t)
	api := newFakeAPI()
	s := newTestStore(t, api, persister, nil)

	s.Login(context.Background(), Credentials{Email: "a@b.com"})
	api.refreshErr = ErrUnauthorized
	s.RefreshJWT(context.Background())

	if mr.Exists("ps:" + DefaultNamespace) {
		t.Fatal("expected snapshot deleted after session cleared")
	}
}
