package portalAuth

import (
	"context"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

// User is the authenticated profile.
type User = session.User

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup form.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// TokenPayload is the body returned by login, register and refresh.
type TokenPayload struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"token_type,omitempty"`
}

// Phase is the saga position of the current session.
type Phase uint8

const (
	// PhaseAnonymous means no token and no user.
	PhaseAnonymous Phase = iota
	// PhaseTokenAcquired means a token is held but the profile is pending or failed.
	PhaseTokenAcquired
	// PhaseAuthenticated means a user profile is present.
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseTokenAcquired:
		return "token_acquired"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is an immutable copy of the session as views observe it.
type State struct {
	User    *User
	Token   string
	Loading bool
}

// Phase derives the saga position from s.
func (s State) Phase() Phase {
	switch {
	case s.User != nil:
		return PhaseAuthenticated
	case s.Token != "":
		return PhaseTokenAcquired
	default:
		return PhaseAnonymous
	}
}

// Role returns the user's role, or role.Unknown without a user.
func (s State) Role() role.Role {
	if s.User == nil {
		return role.Unknown
	}
	return s.User.Role
}

// AuthAPI is the HTTP collaborator the store mediates. Implementations report
// failures as error results and never panic.
type AuthAPI interface {
	RefreshToken(ctx context.Context) Result[TokenPayload]
	Login(ctx context.Context, creds Credentials) Result[TokenPayload]
	Register(ctx context.Context, details Registration) Result[TokenPayload]
	Logout(ctx context.Context) Result[struct{}]
	GetAboutMe(ctx context.Context) Result[User]
}

// Persister is the durable key-value collaborator for {user, token}.
// Load returns session.ErrSnapshotNotFound for a missing namespace.
type Persister interface {
	Load(ctx context.Context, namespace string) (*session.Snapshot, error)
	Save(ctx context.Context, namespace string, snap *session.Snapshot) error
	Delete(ctx context.Context, namespace string) error
}

// TokenSource supplies the bearer token for outgoing requests. An empty string
// means send the request unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to [TokenSource].
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }
