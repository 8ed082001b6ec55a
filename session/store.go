package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every transport failure from the Redis backend.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSnapshotNotFound is returned by Load when nothing is stored for a namespace.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// Store is a Redis-backed snapshot store. Each namespace maps to one key.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a [Store] backed by the given Redis client. prefix sets the key
// namespace; ttl bounds how long an untouched snapshot survives (0 keeps it forever).
func NewStore(redis redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "ps"
	}
	return &Store{
		redis:  redis,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Store) key(namespace string) string {
	return s.prefix + ":" + namespace
}

// Save writes snap under namespace, replacing any previous snapshot and resetting
// its TTL.
//
//	Performance: 1 Redis SET.
func (s *Store) Save(ctx context.Context, namespace string, snap *Snapshot) error {
	if snap == nil {
		return s.Delete(ctx, namespace)
	}
	out := snap.Clone()
	if out.SavedAt.IsZero() {
		out.SavedAt = s.now()
	}
	data, err := Encode(out)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(namespace), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load reads the snapshot for namespace. Legacy encodings are rewritten at the
// current schema version, keeping the remaining TTL.
//
//	Performance: 1 Redis GET, plus PTTL + SET on migration.
func (s *Store) Load(ctx context.Context, namespace string) (*Snapshot, error) {
	key := s.key(namespace)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if err := s.maybeMigrateSchema(ctx, key, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

// Delete removes the snapshot for namespace. Deleting a missing snapshot is not an
// error.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	if err := s.redis.Del(ctx, s.key(namespace)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) maybeMigrateSchema(ctx context.Context, key string, snap *Snapshot) error {
	if snap == nil || snap.SchemaVersion == CurrentSchemaVersion {
		return nil
	}

	pttl, err := s.redis.PTTL(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// go-redis reports -2 for a key that vanished between GET and PTTL, -1 for a
	// key without expiry.
	if pttl == -2 {
		return nil
	}
	if pttl < 0 {
		pttl = 0
	}

	snap.SchemaVersion = CurrentSchemaVersion
	encoded, err := Encode(snap)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, key, encoded, pttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
