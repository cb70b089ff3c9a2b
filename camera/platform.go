// Package camera describes the platform camera capability the app delegates to, plus the
// implementations used by the shell, the Lambda replay and the tests.
package camera

import (
	"context"
	"errors"
)

var (
	ErrUnsupported   = errors.New("camera is not supported on this platform")
	ErrNoSession     = errors.New("no camera session is open")
	ErrDeviceFailure = errors.New("camera device failure")
)

// Decision is the platform's answer to a permission query or request.
type Decision int

const (
	DecisionUndetermined Decision = iota
	DecisionGranted
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// SessionID identifies a platform camera session.
type SessionID string

// Photo is the raw image a device produced.
type Photo struct {
	Data        []byte
	ContentType string
}

// Platform is the host's camera API. RequestPermission may surface a native modal and
// suspends until the user answers it.
type Platform interface {
	Supported() bool
	QueryPermission(ctx context.Context) (Decision, error)
	RequestPermission(ctx context.Context) (Decision, error)
	StartSession(ctx context.Context) (SessionID, error)
	Capture(ctx context.Context, id SessionID) (Photo, error)
	CloseSession(id SessionID) error
}

// Unsupported is the platform of a host without a camera, e.g. a browser build.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) QueryPermission(context.Context) (Decision, error) {
	return DecisionDenied, ErrUnsupported
}

func (Unsupported) RequestPermission(context.Context) (Decision, error) {
	return DecisionDenied, ErrUnsupported
}

func (Unsupported) StartSession(context.Context) (SessionID, error) { return "", ErrUnsupported }

func (Unsupported) Capture(context.Context, SessionID) (Photo, error) {
	return Photo{}, ErrUnsupported
}

func (Unsupported) CloseSession(SessionID) error { return nil }
