package role

import (
	"encoding/json"
	"testing"
)

func TestParseWireRoles(t *testing.T) {
	cases := map[string]Role{
		"admin":    Admin,
		"studio":   Studio,
		"user":     Guest,
		" Admin ":  Admin,
		"STUDIO":   Studio,
		"":         Unknown,
		"owner":    Unknown,
		"guest":    Unknown,
		"super-ad": Unknown,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if got != want {
			t.Fatalf("Parse(%q) = %v, want %v", in, got, want)
		}
		if want == Unknown && err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestHomePathTable(t *testing.T) {
	if got := HomePath(Admin); got != "/super-admin/dashboard" {
		t.Fatalf("admin home = %q", got)
	}
	for _, r := range []Role{Studio, Guest, Unknown, Role(200)} {
		if got := HomePath(r); got != "/studio/dashboard" {
			t.Fatalf("home for %d = %q", r, got)
		}
	}
}

func TestInEmptySetAdmitsAll(t *testing.T) {
	if !Studio.In(nil) {
		t.Fatal("empty set must admit every role")
	}
	if Studio.In([]Role{Admin}) {
		t.Fatal("studio must not be in admin-only set")
	}
	if !Guest.In([]Role{Studio, Guest}) {
		t.Fatal("guest must be in studio/guest set")
	}
}

func TestRoleJSONRoundTrip(t *testing.T) {
	var v struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal([]byte(`{"role":"user"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Role != Guest {
		t.Fatalf("expected Guest, got %v", v.Role)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"role":"user"}` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := json.Unmarshal([]byte(`{"role":"owner"}`), &v); err != nil {
		t.Fatalf("unknown role must not fail decoding: %v", err)
	}
	if v.Role != Unknown {
		t.Fatalf("expected Unknown, got %v", v.Role)
	}
}
