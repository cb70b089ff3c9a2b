// Package app is the state of one running app session: which screen is up, the recipe list,
// the entry workflow and the signed-in user. It replaces process-wide globals; create one App per
// session and drop it when the session ends.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"recipecapture"
	"recipecapture/coordinator"
	"recipecapture/screens"
)

type Screen int

const (
	ScreenHome Screen = iota
	ScreenLogin
	ScreenSignUp
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenSignUp:
		return "signup"
	default:
		return "home"
	}
}

// Home is what the home screen renders.
type Home struct {
	coordinator.Snapshot
	User *recipecapture.User
}

type App struct {
	entry   coordinator.Workflow
	auth    recipecapture.AuthProvider
	alerter recipecapture.Alerter
	login   *screens.Login
	signUp  *screens.SignUp

	mu     sync.Mutex
	screen Screen
}

// New assembles an App on the home screen.
func New(entry coordinator.Workflow, auth recipecapture.AuthProvider, alerter recipecapture.Alerter) *App {
	return &App{
		entry:   entry,
		auth:    auth,
		alerter: alerter,
		login:   screens.NewLogin(auth, alerter),
		signUp:  screens.NewSignUp(auth, alerter),
	}
}

// Entry is the recipe entry workflow driven by the home screen.
func (a *App) Entry() coordinator.Workflow { return a.entry }

func (a *App) Screen() Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.screen
}

func (a *App) Navigate(s Screen) {
	a.mu.Lock()
	from := a.screen
	a.screen = s
	a.mu.Unlock()
	slog.Debug("APP: Navigate", "from", from, "to", s)
}

// Home returns the current home screen state.
func (a *App) Home(ctx context.Context) Home {
	return Home{Snapshot: a.entry.Snapshot(), User: a.auth.CurrentUser(ctx)}
}

// Login returns the sign-in form.
func (a *App) Login() *screens.Login { return a.login }

// SignUp returns the registration form.
func (a *App) SignUp() *screens.SignUp { return a.signUp }

// SubmitLogin submits the sign-in form and goes home on success.
func (a *App) SubmitLogin(ctx context.Context) error {
	if _, err := a.login.Submit(ctx); err != nil {
		return err
	}
	a.Navigate(ScreenHome)
	return nil
}

// SubmitSignUp submits the registration form and returns to the sign-in form on success.
func (a *App) SubmitSignUp(ctx context.Context) error {
	if err := a.signUp.Submit(ctx); err != nil {
		return err
	}
	a.login.Email = a.signUp.Email
	a.Navigate(ScreenLogin)
	return nil
}

// SignOut resets the entry workflow, then ends the auth session. A camera permission request
// still waiting on the dialog will not open the camera afterwards.
func (a *App) SignOut(ctx context.Context) error {
	resetErr := a.entry.Reset(ctx)
	if err := a.auth.SignOut(ctx); err != nil {
		slog.Warn("APP: Sign-out failed", "error", err)
		if a.alerter != nil {
			if aerr := a.alerter.Alert(ctx, "Gabim", err.Error()); aerr != nil {
				slog.Error("APP: Failed to deliver alert", "error", aerr)
			}
		}
		return errors.Join(resetErr, err)
	}
	a.Navigate(ScreenLogin)
	return resetErr
}
