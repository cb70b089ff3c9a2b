package screens

import (
	"context"
	"fmt"
	"log/slog"

	"recipecapture"
)

const (
	loginRequired = "Ju lutem plotësoni email dhe password"
	loginFailed   = "Login Error"
	loginOK       = "Logged in successfully!"
)

// Login is the sign-in form. The shell fills Email and Password, then calls Submit.
type Login struct {
	Email    string
	Password string

	auth    recipecapture.AuthProvider
	alerter recipecapture.Alerter
	busy
}

func NewLogin(auth recipecapture.AuthProvider, alerter recipecapture.Alerter) *Login {
	return &Login{auth: auth, alerter: alerter}
}

// Submit signs in with the form's credentials. A submit while another is in flight returns
// recipecapture.ErrRequestPending and does nothing.
func (l *Login) Submit(ctx context.Context) (*recipecapture.User, error) {
	if blank(l.Email, l.Password) {
		notify(ctx, l.alerter, titleError, loginRequired)
		return nil, fmt.Errorf("%w: email and password are required", recipecapture.ErrValidation)
	}
	if !l.begin() {
		return nil, recipecapture.ErrRequestPending
	}
	defer l.end()

	user, err := l.auth.SignIn(ctx, l.Email, l.Password)
	if err != nil {
		slog.Warn("SCREENS: Sign-in failed", "error", err)
		notify(ctx, l.alerter, loginFailed, err.Error())
		return nil, err
	}

	slog.Info("SCREENS: Signed in", "user", user.ID)
	l.Password = ""
	notify(ctx, l.alerter, titleSuccess, loginOK)
	return user, nil
}
