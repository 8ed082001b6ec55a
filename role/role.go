package role

import (
	"errors"
	"strings"
)

// Role is a portal role. The zero value is [Unknown].
type Role uint8

const (
	// Unknown is the role of an absent or unrecognized principal.
	Unknown Role = iota
	// Admin is the platform super-admin.
	Admin
	// Studio is a photo studio account.
	Studio
	// Guest is a plain user account ("user" on the wire).
	Guest
)

const (
	// AdminHome is where admins land when no more specific destination applies.
	AdminHome = "/super-admin/dashboard"
	// StudioHome is the landing path for every non-admin role.
	StudioHome = "/studio/dashboard"
)

// ErrUnknownRole is returned by [Parse] for strings outside the wire vocabulary.
var ErrUnknownRole = errors.New("unknown role")

var names = [...]string{
	Unknown: "",
	Admin:   "admin",
	Studio:  "studio",
	Guest:   "user",
}

var homes = [...]string{
	Unknown: StudioHome,
	Admin:   AdminHome,
	Studio:  StudioHome,
	Guest:   StudioHome,
}

// Parse maps a wire role string to a [Role]. Matching is case-insensitive and
// ignores surrounding whitespace.
func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return Admin, nil
	case "studio":
		return Studio, nil
	case "user":
		return Guest, nil
	default:
		return Unknown, ErrUnknownRole
	}
}

// MustParse is like [Parse] but returns [Unknown] instead of an error.
func MustParse(s string) Role {
	r, _ := Parse(s)
	return r
}

// String returns the wire form of r.
func (r Role) String() string {
	if int(r) >= len(names) {
		return ""
	}
	return names[r]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r > Unknown && int(r) < len(names)
}

// In reports whether r is a member of set. An empty set admits every role.
func (r Role) In(set []Role) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == r {
			return true
		}
	}
	return false
}

// HomePath returns the role home path: admins go to the admin dashboard root and
// everyone else goes to the studio dashboard root.
func HomePath(r Role) string {
	if int(r) >= len(homes) {
		return StudioHome
	}
	return homes[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized roles decode to
// [Unknown] rather than failing, so a profile with a new role still loads.
func (r *Role) UnmarshalText(text []byte) error {
	*r = MustParse(string(text))
	return nil
}
