// Package guard gates navigation to protected views. It is a pure function
// of the session snapshot; re-evaluate it on every navigation.
package guard

import "github.com/pricepoint/go-admin-console/session"

// LoginPath is where unauthenticated navigation is redirected.
const LoginPath = "/login"

// Decision is the outcome of a navigation check.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Check allows navigation only for a fully authenticated session; anything
// else redirects to the login view.
func Check(snapshot session.Snapshot) Decision {
	if snapshot.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{Allow: false, RedirectTo: LoginPath}
}
