// Package identity defines the contract the console consumes from an
// external identity service: sign-in, sign-out, token refresh, and a typed
// auth-state change stream. Implementations live in subpackages.
package identity

import (
	"context"
	"time"
)

// User is the identity provider's view of an authenticated person. The
// backend's own user record (including the role) is resolved separately.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Credential is the result of a successful sign-in or token refresh.
type Credential struct {
	User         User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Provider abstracts the hosted identity service.
type Provider interface {
	// SignIn exchanges credentials for tokens. Credential validation is the
	// provider's concern; errors are propagated verbatim.
	SignIn(ctx context.Context, email, password string) (*Credential, error)

	// SignOut ends the provider-side session. Signing out while already
	// signed out is a no-op.
	SignOut(ctx context.Context) error

	// Refresh mints a new access token for the holder of refreshToken.
	// Providers may rotate the refresh token; an empty RefreshToken in the
	// returned credential means the old one stays valid.
	Refresh(ctx context.Context, refreshToken string) (*Credential, error)

	// Subscribe registers a listener for auth-state changes. Events fire at
	// most once per actual transition. The returned function removes the
	// listener and must be called on teardown.
	Subscribe(listener func(Event)) (unsubscribe func())
}
