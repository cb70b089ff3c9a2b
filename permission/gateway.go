// Package permission wraps the platform camera permission API behind a cached tri-state.
package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"recipecapture/camera"
)

var (
	// ErrUserDenied means the user (or a remembered decision) refused camera access.
	ErrUserDenied = errors.New("camera permission denied")
	// ErrCapabilityUnavailable means the host has no camera; the platform was never asked.
	ErrCapabilityUnavailable = errors.New("camera capability unavailable")
)

type State int

const (
	Unrequested State = iota
	Granted
	Denied
)

func (s State) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unrequested"
	}
}

// Policy controls what happens when permission is requested again after a denial.
// Whether re-prompting is possible at all depends on the platform.
type Policy struct {
	ReRequestAfterDenial bool
}

// Gateway caches the permission decision for the lifetime of the app session.
// It is safe for concurrent use but does not collapse concurrent requests.
type Gateway struct {
	platform camera.Platform
	policy   Policy

	mu    sync.Mutex
	state State
}

func NewGateway(platform camera.Platform, policy Policy) *Gateway {
	return &Gateway{platform: platform, policy: policy}
}

// Query returns the cached state without touching the platform.
func (g *Gateway) Query(ctx context.Context) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Sync adopts a decision the platform already remembers from a previous run. It never prompts.
func (g *Gateway) Sync(ctx context.Context) (State, error) {
	if !g.platform.Supported() {
		return g.Query(ctx), nil
	}
	d, err := g.platform.QueryPermission(ctx)
	if err != nil {
		return g.Query(ctx), fmt.Errorf("query permission: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Unrequested {
		g.state = fromDecision(d)
	}
	return g.state, nil
}

// Request asks the platform for camera access and suspends until the dialog resolves.
// On a host without a camera it caches Denied and never asks the platform.
// A dismissed dialog reports Denied with ErrUserDenied but caches nothing, so the next
// request prompts again.
func (g *Gateway) Request(ctx context.Context) (State, error) {
	if !g.platform.Supported() {
		g.mu.Lock()
		g.state = Denied
		g.mu.Unlock()
		slog.Warn("PERMISSION: Camera unsupported, not asking the platform")
		return Denied, ErrCapabilityUnavailable
	}

	g.mu.Lock()
	cached := g.state
	g.mu.Unlock()

	switch {
	case cached == Granted:
		return Granted, nil
	case cached == Denied && !g.policy.ReRequestAfterDenial:
		return Denied, ErrUserDenied
	}

	slog.Info("PERMISSION: Requesting camera permission", "cached", cached)
	d, err := g.platform.RequestPermission(ctx)
	if err != nil {
		return cached, fmt.Errorf("request permission: %w", err)
	}

	state := fromDecision(d)
	if state == Unrequested {
		slog.Info("PERMISSION: Dialog dismissed without an answer")
		return Denied, ErrUserDenied
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()

	slog.Info("PERMISSION: Camera permission resolved", "state", state)
	if state == Denied {
		return Denied, ErrUserDenied
	}
	return Granted, nil
}

func fromDecision(d camera.Decision) State {
	switch d {
	case camera.DecisionGranted:
		return Granted
	case camera.DecisionDenied:
		return Denied
	default:
		return Unrequested
	}
}
