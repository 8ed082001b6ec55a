package session

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded snapshots in process memory. Snapshots still pass
// through [Encode] and [Decode] so callers observe the same round-trip semantics as
// the durable backends.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Save encodes and stores snap. A nil snap deletes.
func (m *MemoryStore) Save(_ context.Context, namespace string, snap *Snapshot) error {
	if snap == nil {
		return m.Delete(context.Background(), namespace)
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.blobs[namespace] = data
	m.mu.Unlock()
	return nil
}

// Load returns [ErrSnapshotNotFound] when nothing is stored.
func (m *MemoryStore) Load(_ context.Context, namespace string) (*Snapshot, error) {
	m.mu.Lock()
	data, ok := m.blobs[namespace]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return Decode(data)
}

// Delete is idempotent.
func (m *MemoryStore) Delete(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.blobs, namespace)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored namespaces.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
