package gate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/portalAuth/role"
)

// Access classifies how a route reacts to the session.
type Access uint8

const (
	// Public routes render for everyone.
	Public Access = iota
	// PublicOnly routes (login, signup) are only for visitors without a session.
	PublicOnly
	// Protected routes need a user, optionally with one of Route.Roles.
	Protected
	// Root never renders; it redirects to login or to the role home.
	Root
)

// String returns the lowercase name of a.
func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case PublicOnly:
		return "public-only"
	case Protected:
		return "protected"
	case Root:
		return "root"
	default:
		return fmt.Sprintf("access(%d)", uint8(a))
	}
}

const (
	// LoginPath is where visitors without a session are sent.
	LoginPath = "/auth/login"
	// SignupPath is the registration form.
	SignupPath = "/auth/signup"
)

// Route is one entry of a [Table].
type Route struct {
	Pattern string
	Access  Access
	Roles   []role.Role
	Title   string

	segments []string
}

// Params holds the values of ":name" segments captured by a match.
type Params map[string]string

// Table is an ordered set of routes. The first matching route wins.
type Table struct {
	routes []Route
}

var (
	errPattern      = errors.New("route pattern must start with /")
	errDuplicate    = errors.New("duplicate route pattern")
	errRootPattern  = errors.New("root access is only valid for /")
	errEmptyParam   = errors.New("route parameter needs a name")
	errRolesOnRoute = errors.New("roles are only valid on protected routes")
)

// NewTable validates routes and returns a table that matches them in order.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make([]Route, 0, len(routes))}
	seen := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("%w: %q", errPattern, r.Pattern)
		}
		if r.Access == Root && r.Pattern != "/" {
			return nil, fmt.Errorf("%w: %q", errRootPattern, r.Pattern)
		}
		if len(r.Roles) > 0 && r.Access != Protected {
			return nil, fmt.Errorf("%w: %q", errRolesOnRoute, r.Pattern)
		}
		r.segments = split(r.Pattern)
		for _, seg := range r.segments {
			if seg == ":" {
				return nil, fmt.Errorf("%w: %q", errEmptyParam, r.Pattern)
			}
		}
		key := shape(r.segments)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", errDuplicate, r.Pattern)
		}
		seen[key] = struct{}{}
		r.Roles = append([]role.Role(nil), r.Roles...)
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// MustTable is like [NewTable] but panics on an invalid route set. It is meant
// for package-level tables built from literals.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns a copy of the table entries in match order.
func (t *Table) Routes() []Route {
	if t == nil {
		return nil
	}
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Match finds the first route whose pattern matches path. Query strings and a
// trailing slash are ignored.
func (t *Table) Match(path string) (Route, Params, bool) {
	if t == nil {
		return Route{}, nil, false
	}
	parts := split(path)
	for _, r := range t.routes {
		if params, ok := match(r.segments, parts); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func match(pattern, parts []string) (Params, bool) {
	if len(pattern) != len(parts) {
		return nil, false
	}
	var params Params
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(Params, 1)
			}
			params[name] = parts[i]
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// shape maps a pattern to a key where every parameter looks the same, so
// "/a/:x" and "/a/:y" collide.
func shape(segments []string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		if strings.HasPrefix(seg, ":") {
			b.WriteByte(':')
			continue
		}
		b.WriteString(seg)
	}
	return b.String()
}

var (
	adminRoles  = []role.Role{role.Admin}
	studioRoles = []role.Role{role.Studio, role.Guest}
)

// DefaultTable returns the portal route table.
func DefaultTable() *Table {
	return MustTable(
		Route{Pattern: "/", Access: Root},
		Route{Pattern: LoginPath, Access: PublicOnly, Title: "Sign In"},
		Route{Pattern: SignupPath, Access: PublicOnly, Title: "Create Account"},

		Route{Pattern: role.AdminHome, Access: Protected, Roles: adminRoles, Title: "Platform Overview"},
		Route{Pattern: "/super-admin/studios", Access: Protected, Roles: adminRoles, Title: "Studio Management"},
		Route{Pattern: "/super-admin/analytics", Access: Protected, Roles: adminRoles, Title: "Platform Analytics"},
		Route{Pattern: "/super-admin/settings", Access: Protected, Roles: adminRoles, Title: "System Settings"},
		Route{Pattern: "/super-admin/plans", Access: Protected, Roles: adminRoles, Title: "Subscription Plans"},
		Route{Pattern: "/super-admin/studio/:studioId", Access: Protected, Roles: adminRoles, Title: "Studio Profile"},

		Route{Pattern: role.StudioHome, Access: Protected, Roles: studioRoles, Title: "Studio Home"},
		Route{Pattern: "/studio/photos", Access: Protected, Roles: studioRoles, Title: "Event Photography"},
		Route{Pattern: "/studio/events", Access: Protected, Roles: studioRoles, Title: "Events List"},
		Route{Pattern: "/studio/create-event", Access: Protected, Roles: studioRoles, Title: "Create New Event"},
		Route{Pattern: "/studio/analytics", Access: Protected, Roles: studioRoles, Title: "Analytics"},
		Route{Pattern: "/studio/settings", Access: Protected, Roles: studioRoles, Title: "Settings"},

		Route{Pattern: "/event/:eventId", Access: Public, Title: "Event Gallery"},
		Route{Pattern: "/demo/event", Access: Public, Title: "Event Gallery"},
	)
}
