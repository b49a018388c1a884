// Package session owns the in-memory record of the signed-in operator and
// its tokens. The Controller is the single writer; every other component
// observes through read-only snapshots.
package session

import "context"

// State is the session's position in its lifecycle.
type State int

const (
	// StateUnauthenticated means no identity is present.
	StateUnauthenticated State = iota
	// StatePendingRoleCheck means tokens were obtained but the backend
	// identity has not been resolved yet.
	StatePendingRoleCheck
	// StateAuthenticated means tokens and a backend-verified administrative
	// identity are both present.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StatePendingRoleCheck:
		return "pending_role_check"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// User is the session's view of the signed-in operator. The serialized form
// is what the credential store's "user" slot holds.
type User struct {
	ID           string `json:"id"`
	UID          string `json:"uid"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}

// Snapshot is the read-only view handed to subscribers.
type Snapshot struct {
	State State
	User  *User
}

// IsAuthenticated reports whether an identity is present.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// BackendIdentity is the backend's authoritative user record for a freshly
// issued token, fetched once per token to gate session acceptance.
type BackendIdentity struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// IdentityResolver exchanges a raw access token for the backend's own user
// record. Implementations must not route through the authorized transport:
// resolution happens before the session accepts the token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*BackendIdentity, error)
}
