package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step is one user action. Scripts are lists of steps; the shell turns each typed line into one.
type Step struct {
	Action    string `yaml:"action" json:"action"`
	Text      string `yaml:"text,omitempty" json:"text,omitempty"`
	Email     string `yaml:"email,omitempty" json:"email,omitempty"`
	Password  string `yaml:"password,omitempty" json:"password,omitempty"`
	FirstName string `yaml:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty" json:"last_name,omitempty"`
}

// Script is a replayable session.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

var ErrUnknownAction = errors.New("unknown action")

// ParseScript reads a YAML script.
func ParseScript(r io.Reader) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, fmt.Errorf("empty script")
		}
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step.Action) == "" {
			return Script{}, fmt.Errorf("step %d: action is required", i+1)
		}
	}
	return s, nil
}

// Apply performs one step against the app. Errors are the same ones the screens return;
// they are reported, not fatal.
func (a *App) Apply(ctx context.Context, step Step) error {
	switch strings.ToLower(strings.TrimSpace(step.Action)) {
	case "add":
		return a.entry.AddManually(ctx)
	case "title":
		return a.entry.SetDraftTitle(ctx, step.Text)
	case "save":
		return a.entry.SubmitManual(ctx)
	case "cancel":
		return a.entry.CancelManual(ctx)
	case "camera":
		return a.entry.UseCamera(ctx)
	case "snap":
		return a.entry.TakePhoto(ctx)
	case "close":
		return a.entry.CloseCamera(ctx)
	case "login":
		a.Navigate(ScreenLogin)
		if step.Email != "" || step.Password != "" {
			a.login.Email, a.login.Password = step.Email, step.Password
		}
		return a.SubmitLogin(ctx)
	case "signup":
		a.Navigate(ScreenSignUp)
		a.signUp.FirstName, a.signUp.LastName = step.FirstName, step.LastName
		a.signUp.Email, a.signUp.Password = step.Email, step.Password
		return a.SubmitSignUp(ctx)
	case "logout":
		return a.SignOut(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
	}
}

// Replay applies every step in order and returns the per-step errors, indexed like s.Steps.
func (a *App) Replay(ctx context.Context, s Script) []error {
	errs := make([]error, len(s.Steps))
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		errs[i] = a.Apply(ctx, step)
	}
	return errs
}
