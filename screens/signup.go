package screens

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"recipecapture"
)

const (
	signUpRequired = "Ju lutem plotësoni të gjitha fushat"
	signUpOK       = "Regjistrimi u krye me sukses. Kontrollo email-in për verifikim."
)

// SignUp is the registration form. All four fields are required.
type SignUp struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	auth    recipecapture.AuthProvider
	alerter recipecapture.Alerter
	busy
}

func NewSignUp(auth recipecapture.AuthProvider, alerter recipecapture.Alerter) *SignUp {
	return &SignUp{auth: auth, alerter: alerter}
}

// Submit registers the account. On success the user still has to confirm their email before
// signing in; the caller navigates back to the login form.
func (s *SignUp) Submit(ctx context.Context) error {
	if blank(s.FirstName, s.LastName, s.Email, s.Password) {
		notify(ctx, s.alerter, titleError, signUpRequired)
		return fmt.Errorf("%w: all fields are required", recipecapture.ErrValidation)
	}
	if !s.begin() {
		return recipecapture.ErrRequestPending
	}
	defer s.end()

	profile := recipecapture.Profile{
		FirstName: strings.TrimSpace(s.FirstName),
		LastName:  strings.TrimSpace(s.LastName),
	}
	if err := s.auth.SignUp(ctx, s.Email, s.Password, profile); err != nil {
		slog.Warn("SCREENS: Sign-up failed", "error", err)
		notify(ctx, s.alerter, titleError, err.Error())
		return err
	}

	slog.Info("SCREENS: Sign-up submitted", "name", profile.DisplayName())
	notify(ctx, s.alerter, titleSuccess, signUpOK)
	return nil
}
