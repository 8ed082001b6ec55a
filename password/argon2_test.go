package password

import (
	"errors"
	"strings"
	"testing"
)

func newTestHasher(t *testing.T, mutate func(*Config)) *Hasher {
	t.Helper()
	cfg := FastConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t, nil)

	hash, err := h.Hash("studio-pass-1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := h.Verify("studio-pass-1", hash)
	if err != nil || !ok {
		t.Fatalf("expected verification to succeed: ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("studio-pass-2", hash)
	if err != nil || ok {
		t.Fatalf("expected wrong password to fail: ok=%v err=%v", ok, err)
	}
}

func TestHashLengthBounds(t *testing.T) {
	h := newTestHasher(t, func(c *Config) { c.MaxPasswordBytes = 16 })

	if _, err := h.Hash("short"); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected length error for short password, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 17)); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected length error for long password, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 16)); err != nil {
		t.Fatalf("expected max-length password accepted: %v", err)
	}
	if _, err := h.Verify(strings.Repeat("a", 17), "$argon2id$v=19$m=8192,t=1,p=1$x$y"); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected oversized verify rejected before parsing, got %v", err)
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak := newTestHasher(t, nil)
	hash, err := weak.Hash("upgrade-me-please")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if up, err := weak.NeedsUpgrade(hash); err != nil || up {
		t.Fatalf("same config must not need upgrade: up=%v err=%v", up, err)
	}

	strong := newTestHasher(t, func(c *Config) { c.Time = 2 })
	if up, err := strong.NeedsUpgrade(hash); err != nil || !up {
		t.Fatalf("stronger config must need upgrade: up=%v err=%v", up, err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t, nil)
	cases := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
	}
	for _, c := range cases {
		if _, err := h.Verify("whatever-pass", c); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("expected malformed error for %q, got %v", c, err)
		}
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cfg := FastConfig()
	cfg.Memory = 1024
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected low memory rejected")
	}
	cfg = FastConfig()
	cfg.MinPasswordBytes = 20
	cfg.MaxPasswordBytes = 10
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected inverted bounds rejected")
	}
}
