package portalAuth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/portalAuth/internal/audit"
	"github.com/MrEthical07/portalAuth/session"
)

// SessionStore is the single source of truth for who is logged in. It mediates
// every session-mutating network call and persists {user, token}.
//
// All methods are safe for concurrent use. Each mutating call takes a generation
// ticket when it starts; a response is applied only if no later-started call has
// already applied its own, so the last-started call wins.
type SessionStore struct {
	cfg       Config
	api       AuthAPI
	persister Persister
	logger    zerolog.Logger
	metrics   *Metrics
	audit     *audit.Dispatcher
	now       func() time.Time

	mu        sync.Mutex
	user      *User
	token     string
	loading   int
	gen       uint64
	applied   uint64
	mutations uint64 // applied state changes, restores included
	closed    bool
	subs      map[uint64]func(State)
	nextSub   uint64
	stops     []func()

	persistMu sync.Mutex
}

// User returns a copy of the current user.
func (s *SessionStore) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Token returns the bearer token, or "" when absent. SessionStore satisfies
// [TokenSource].
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Loading reports whether any loading-mode operation is in flight.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Phase reports how far the current session got: anonymous, token acquired or
// authenticated.
func (s *SessionStore) Phase() Phase {
	return s.Snapshot().Phase()
}

// Snapshot returns a deep copy of the current state.
func (s *SessionStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe registers fn to receive every state change. fn runs on the goroutine
// that made the change, outside the store lock. The returned func unregisters it.
func (s *SessionStore) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Metrics returns the store's counters.
func (s *SessionStore) Metrics() *Metrics {
	return s.metrics
}

// MetricsSnapshot returns a copy of all counters.
func (s *SessionStore) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Restore loads the persisted snapshot. A missing snapshot is not an error. The
// snapshot is applied only if no other state change landed while it was being
// read, and it never supersedes an operation already in flight.
func (s *SessionStore) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	mark := s.mutations
	s.mu.Unlock()

	snap, err := s.persister.Load(ctx, s.cfg.Persistence.Namespace)
	if errors.Is(err, session.ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		s.metrics.Inc(MetricRestoreFailure)
		s.logger.Warn().Err(err).Str("namespace", s.cfg.Persistence.Namespace).Msg("session restore failed")
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	if s.closed || s.mutations != mark {
		s.mu.Unlock()
		s.logger.Debug().Msg("restore skipped, session changed while loading")
		return nil
	}
	s.mutations++
	s.token = snap.Token
	s.user = nil
	if snap.User != nil {
		u := *snap.User
		s.user = &u
	}
	state := s.stateLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, state)

	s.metrics.Inc(MetricRestoreSuccess)
	s.logger.Debug().
		Bool("has_token", snap.Token != "").
		Bool("has_user", snap.User != nil).
		Uint8("schema_version", snap.SchemaVersion).
		Msg("session restored")
	return nil
}

// Close stops background refresh, writes the final snapshot and drains the audit
// dispatcher. Operations called after Close fail with [ErrStoreClosed].
func (s *SessionStore) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}

	err := s.flush(ctx)
	s.audit.Close()
	return err
}

func (s *SessionStore) ready() error {
	if s == nil || s.api == nil {
		return ErrStoreNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// begin issues the next generation ticket.
func (s *SessionStore) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	s.gen++
	return s.gen, nil
}

// apply runs mutate under the lock if ticket is not older than the last applied
// mutation, then persists and notifies subscribers. It reports whether mutate ran.
func (s *SessionStore) apply(ctx context.Context, ticket uint64, persist bool, mutate func()) bool {
	s.mu.Lock()
	if s.closed || ticket < s.applied {
		s.mu.Unlock()
		s.metrics.Inc(MetricStaleResponse)
		s.logger.Debug().Uint64("ticket", ticket).Msg("stale response discarded")
		return false
	}
	s.applied = ticket
	s.mutations++
	mutate()
	state := s.stateLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if persist {
		s.persist(ctx)
	}
	notify(subs, state)
	return true
}

func (s *SessionStore) clearLocked() {
	s.user = nil
	s.token = ""
}

func (s *SessionStore) beginLoading() {
	s.mu.Lock()
	s.loading++
	state := s.stateLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, state)
}

func (s *SessionStore) endLoading() {
	s.mu.Lock()
	if s.loading > 0 {
		s.loading--
	}
	state := s.stateLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, state)
}

func (s *SessionStore) stateLocked() State {
	st := State{Token: s.token, Loading: s.loading > 0}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

func (s *SessionStore) subscribersLocked() []func(State) {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state)
	}
}

// persist writes the current durable state. Failures are logged and counted; they
// never fail the calling operation.
func (s *SessionStore) persist(ctx context.Context) {
	if err := s.flush(context.WithoutCancel(ctx)); err != nil {
		s.metrics.Inc(MetricPersistFailure)
		s.logger.Warn().Err(err).Str("namespace", s.cfg.Persistence.Namespace).Msg("session persist failed")
	}
}

// flush writes whatever the state is at the time the write lock is held, so
// concurrent writers always leave the latest state behind.
func (s *SessionStore) flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if s.cfg.Persistence.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Persistence.WriteTimeout)
		defer cancel()
	}

	s.mu.Lock()
	snap := &session.Snapshot{Token: s.token, SavedAt: s.now()}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	s.mu.Unlock()

	if snap.Empty() {
		return s.persister.Delete(ctx, s.cfg.Persistence.Namespace)
	}
	return s.persister.Save(ctx, s.cfg.Persistence.Namespace, snap)
}
