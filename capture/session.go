// Package capture manages the transient "camera is open" mode: open a session, take a photo,
// close it. Photos are written to an ImageStore and surface as opaque ImageRefs.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"recipecapture/camera"
	"recipecapture/capture/storage"
	"recipecapture/permission"
)

var (
	ErrPermissionRequired = errors.New("camera permission required")
	ErrCaptureFailed      = errors.New("capture failed")
	// ErrSessionRace means the capture ran against a session that is gone or was closed
	// while the photo was being taken. Callers treat it as a no-op.
	ErrSessionRace = errors.New("capture session closed")
)

// ImageRef is the opaque reference to a stored photo.
type ImageRef string

// Handle identifies one opened session. Handles are never reused.
type Handle struct {
	id  camera.SessionID
	seq uint64
}

func (h Handle) IsZero() bool { return h.seq == 0 }

// Shot is a successful capture.
type Shot struct {
	Ref   ImageRef
	Photo camera.Photo
}

type active struct {
	handle Handle
	ctx    context.Context
	cancel context.CancelFunc
}

// Session assumes a single owner; it does not stop a second Open, it replaces the first.
type Session struct {
	platform camera.Platform
	images   storage.ImageStore

	mu     sync.Mutex
	active *active
	seq    uint64
}

func NewSession(platform camera.Platform, images storage.ImageStore) *Session {
	return &Session{platform: platform, images: images}
}

// Open starts a camera session. state must be the permission state established just before the call.
func (s *Session) Open(ctx context.Context, state permission.State) (Handle, error) {
	if state != permission.Granted {
		return Handle{}, ErrPermissionRequired
	}

	id, err := s.platform.StartSession(ctx)
	if err != nil {
		return Handle{}, fmt.Errorf("start camera session: %w", err)
	}

	s.mu.Lock()
	prev := s.active
	s.seq++
	sessCtx, cancel := context.WithCancel(context.Background())
	s.active = &active{
		handle: Handle{id: id, seq: s.seq},
		ctx:    sessCtx,
		cancel: cancel,
	}
	h := s.active.handle
	s.mu.Unlock()

	if prev != nil {
		slog.Warn("CAPTURE: Replacing a session that was never closed", "session", prev.handle.id)
		s.release(prev)
	}

	slog.Info("CAPTURE: Session opened", "session", id)
	return h, nil
}

// Active returns the handle of the open session, if any.
func (s *Session) Active() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return Handle{}, false
	}
	return s.active.handle, true
}

// Capture suspends until the device produces a photo and the photo is stored.
// Closing the session meanwhile makes it return ErrSessionRace.
func (s *Session) Capture(ctx context.Context, h Handle) (Shot, error) {
	sessCtx, ok := s.lookup(h)
	if !ok {
		return Shot{}, ErrSessionRace
	}

	capCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sessCtx, cancel)
	defer stop()

	photo, err := s.platform.Capture(capCtx, h.id)
	if _, still := s.lookup(h); !still {
		return Shot{}, ErrSessionRace
	}
	if err != nil {
		if errors.Is(err, camera.ErrNoSession) {
			return Shot{}, ErrSessionRace
		}
		return Shot{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	key := uuid.NewString() + storage.Extension(photo.ContentType)
	ref, err := s.images.Put(ctx, key, photo.Data, photo.ContentType)
	if err != nil {
		return Shot{}, fmt.Errorf("%w: store photo: %w", ErrCaptureFailed, err)
	}
	if _, still := s.lookup(h); !still {
		slog.Info("CAPTURE: Session closed while storing photo, dropping it", "ref", ref)
		return Shot{}, ErrSessionRace
	}

	slog.Info("CAPTURE: Photo captured", "session", h.id, "ref", ref, "bytes", len(photo.Data))
	return Shot{Ref: ImageRef(ref), Photo: photo}, nil
}

// Close releases the camera and cancels any in-flight capture. Closing a stale or already
// closed handle is a no-op.
func (s *Session) Close(h Handle) error {
	s.mu.Lock()
	a := s.active
	if a == nil || a.handle != h {
		s.mu.Unlock()
		return nil
	}
	s.active = nil
	s.mu.Unlock()

	return s.release(a)
}

func (s *Session) release(a *active) error {
	a.cancel()
	if err := s.platform.CloseSession(a.handle.id); err != nil {
		slog.Error("CAPTURE: Failed to close platform session", "session", a.handle.id, "error", err)
		return fmt.Errorf("close camera session: %w", err)
	}
	slog.Info("CAPTURE: Session closed", "session", a.handle.id)
	return nil
}

func (s *Session) lookup(h Handle) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.handle != h {
		return nil, false
	}
	return s.active.ctx, true
}
