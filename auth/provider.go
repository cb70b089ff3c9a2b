// Package auth talks to the account backend. Screens only call a provider and render what
// comes back; no account logic lives in the app.
package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrBackend            = errors.New("auth backend error")
)

// AuthError is every failure a provider returns. Message is what the backend said and is shown
// to the user as is.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + " failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

func authErr(op, message string, err error) *AuthError {
	return &AuthError{Op: op, Message: message, Err: err}
}
