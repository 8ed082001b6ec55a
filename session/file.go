package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore keeps one snapshot file per namespace inside dir. Writes go through a
// temp file and rename so a crash never leaves a half-written snapshot.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore returns a [FileStore] rooted at dir. The directory is created on first
// save with 0700 permissions.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (f *FileStore) path(namespace string) (string, error) {
	if namespace == "" || strings.ContainsAny(namespace, `/\`) || namespace == "." || namespace == ".." {
		return "", fmt.Errorf("invalid namespace %q", namespace)
	}
	return filepath.Join(f.dir, namespace+".session"), nil
}

// Save writes snap for namespace with 0600 permissions.
func (f *FileStore) Save(_ context.Context, namespace string, snap *Snapshot) error {
	if snap == nil {
		return f.Delete(context.Background(), namespace)
	}
	path, err := f.path(namespace)
	if err != nil {
		return err
	}

	out := snap.Clone()
	if out.SavedAt.IsZero() {
		out.SavedAt = f.now()
	}
	data, err := Encode(out)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, "."+namespace+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for namespace.
func (f *FileStore) Load(_ context.Context, namespace string) (*Snapshot, error) {
	path, err := f.path(namespace)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return Decode(data)
}

// Delete removes the snapshot file; a missing file is not an error.
func (f *FileStore) Delete(_ context.Context, namespace string) error {
	path, err := f.path(namespace)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}
