package gate

import (
	"fmt"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/MrEthical07/portalAuth/role"
)

// Action is what the host should do for a navigation.
type Action uint8

const (
	// Render shows the view of Decision.Route.
	Render Action = iota
	// Redirect replaces the location with Decision.Target.
	Redirect
	// NotFound means no route matched, or none this user may ever reach.
	NotFound
	// Wait means bootstrap has not settled; render nothing.
	Wait
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	case Wait:
		return "wait"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Decision is the outcome of [Decide].
type Decision struct {
	Action Action
	Target string
	Route  Route
	Params Params
}

// Decide maps a path and a session state to a decision using the default
// table. It has no side effects.
func Decide(path string, state portalAuth.State) Decision {
	return defaultTable.Decide(path, state)
}

var defaultTable = DefaultTable()

// Decide maps a path and a session state to a decision.
//
// Public-only routes bounce an authenticated user to the role home. Protected
// routes send a visitor without a user to [LoginPath] and a user outside
// Route.Roles to the role home. The root path always redirects.
func (t *Table) Decide(path string, state portalAuth.State) Decision {
	r, params, ok := t.Match(path)
	if !ok {
		return Decision{Action: NotFound}
	}
	d := Decision{Action: Render, Route: r, Params: params}
	user := state.User

	switch r.Access {
	case Root:
		d.Action = Redirect
		d.Target = LoginPath
		if user != nil {
			d.Target = role.HomePath(user.Role)
		}
	case PublicOnly:
		if user != nil {
			d.Action = Redirect
			d.Target = role.HomePath(user.Role)
		}
	case Protected:
		if user == nil {
			d.Action = Redirect
			d.Target = LoginPath
			break
		}
		if !user.Role.In(r.Roles) {
			home := role.HomePath(user.Role)
			if hr, _, found := t.Match(home); found && hr.Pattern == r.Pattern {
				// The role home itself rejects this role; redirecting would loop.
				return Decision{Action: NotFound, Route: r, Params: params}
			}
			d.Action = Redirect
			d.Target = home
		}
	}
	return d
}
