package session

import (
	"time"

	"github.com/MrEthical07/portalAuth/role"
)

// User is the authenticated profile returned by the "who am I" call.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        role.Role `json:"role"`
	Plan        string    `json:"plan"`
	Credits     int64     `json:"availableCredits"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Snapshot is the durable subset of a session.
type Snapshot struct {
	Token string
	User  *User

	SavedAt       time.Time
	SchemaVersion uint8
}

// Empty reports whether the snapshot carries neither a token nor a user.
func (s *Snapshot) Empty() bool {
	return s == nil || (s.Token == "" && s.User == nil)
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return &out
}
