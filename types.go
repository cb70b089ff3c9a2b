package recipecapture

import (
	"context"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Alerter surfaces a user-visible message, the equivalent of a native alert dialog.
type Alerter interface {
	Alert(ctx context.Context, title string, message string) error
}

// AuthProvider is the hosted auth backend. The app only calls it and renders the result.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password string, profile Profile) error
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) *User
}

// User is the signed-in account as reported by the auth backend
type User struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Profile Profile `json:"user_metadata"`
}

// Profile holds the extra fields collected on the sign-up screen
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns "First Last", falling back to whichever part is set.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}
