// Package coordinator implements the recipe entry state machine: it decides whether the screen
// shows the list, the manual-entry form or the camera, and routes user actions through the
// permission gateway and the capture session before touching the recipe store.
//
// All transitions go through one mutex-guarded mode variable. The mutex is never held across a
// suspension point (permission dialog, capture, naming); state is re-checked after each one.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"recipecapture"
	"recipecapture/capture"
	"recipecapture/naming"
	"recipecapture/permission"
	"recipecapture/recipes"
)

const DefaultPhotoTitle = "Recetë nga kamera"

// Workflow is what the rendering shell drives. Both Coordinator and InstrumentedCoordinator
// implement it.
type Workflow interface {
	AddManually(ctx context.Context) error
	SetDraftTitle(ctx context.Context, title string) error
	SubmitManual(ctx context.Context) error
	CancelManual(ctx context.Context) error
	UseCamera(ctx context.Context) error
	TakePhoto(ctx context.Context) error
	CloseCamera(ctx context.Context) error
	Reset(ctx context.Context) error
	Snapshot() Snapshot
}

type permissionGateway interface {
	Query(ctx context.Context) permission.State
	Request(ctx context.Context) (permission.State, error)
}

type captureSession interface {
	Open(ctx context.Context, state permission.State) (capture.Handle, error)
	Capture(ctx context.Context, h capture.Handle) (capture.Shot, error)
	Close(h capture.Handle) error
}

type recipeStore interface {
	Append(e recipes.Entry)
	List() []recipes.Entry
	Len() int
}

// Snapshot is everything the shell needs to render the home screen.
type Snapshot struct {
	Mode              Mode
	DraftTitle        string
	Recipes           []recipes.Entry
	Permission        permission.State
	PermissionPending bool
	Capturing         bool
	LastMessage       string
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithDefaultTitle sets the title used for photos when naming fails.
func WithDefaultTitle(title string) Option {
	return func(c *Coordinator) {
		if strings.TrimSpace(title) != "" {
			c.defaultTitle = title
		}
	}
}

// WithNamer sets how photos get their titles. The default names every photo with the default title.
func WithNamer(n naming.Namer) Option {
	return func(c *Coordinator) {
		c.namer = n
	}
}

// WithAlerter sets where surfaced failures are shown.
func WithAlerter(a recipecapture.Alerter) Option {
	return func(c *Coordinator) {
		c.alerter = a
	}
}

// WithTransitionLogger records every transition in a journal.
func WithTransitionLogger(l recipecapture.TransitionLogger) Option {
	return func(c *Coordinator) {
		c.journal = l
	}
}

// Coordinator owns the UI mode for one app session.
type Coordinator struct {
	gateway permissionGateway
	session captureSession
	store   recipeStore
	namer   naming.Namer
	alerter recipecapture.Alerter
	journal recipecapture.TransitionLogger

	defaultTitle string

	mu          sync.Mutex
	mode        Mode
	draft       string
	pending     bool
	capturing   bool
	handle      capture.Handle
	gen         uint64
	seq         int
	lastMessage string
}

var _ Workflow = (*Coordinator)(nil)

// NewCoordinator creates a coordinator in Normal mode.
func NewCoordinator(gateway permissionGateway, session captureSession, store recipeStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:      gateway,
		session:      session,
		store:        store,
		journal:      recipecapture.NewNoOpTransitionLogger(),
		defaultTitle: DefaultPhotoTitle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.namer == nil {
		c.namer = naming.Static(c.defaultTitle)
	}
	return c
}

// AddManually opens the manual-entry form with an empty draft.
func (c *Coordinator) AddManually(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Normal {
		return invalid("add_manually", c.mode)
	}
	c.draft = ""
	c.transition("add_manually", ManualEntryOpen, "", nil)
	return nil
}

// SetDraftTitle mirrors the text field of the manual-entry form.
func (c *Coordinator) SetDraftTitle(ctx context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ManualEntryOpen {
		return invalid("set_draft_title", c.mode)
	}
	c.draft = title
	return nil
}

// SubmitManual appends the draft as a recipe. An empty or whitespace-only draft keeps the form open.
func (c *Coordinator) SubmitManual(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != ManualEntryOpen {
		mode := c.mode
		c.mu.Unlock()
		return invalid("submit_manual", mode)
	}

	title := strings.TrimSpace(c.draft)
	if title == "" {
		err := ErrValidation
		c.transition("submit_manual", ManualEntryOpen, "", err)
		c.mu.Unlock()
		c.surface(ctx, err)
		return err
	}

	c.store.Append(recipes.Entry{Title: title, CreatedAt: time.Now()})
	c.draft = ""
	c.transition("submit_manual", Normal, "", nil)
	c.mu.Unlock()

	slog.Info("COORDINATOR: Manual recipe added", "title", title)
	return nil
}

// CancelManual discards the draft and returns to the list.
func (c *Coordinator) CancelManual(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ManualEntryOpen {
		return invalid("cancel_manual", c.mode)
	}
	c.draft = ""
	c.transition("cancel_manual", Normal, "", nil)
	return nil
}

// UseCamera asks for camera permission and opens the camera if it is granted. It suspends while
// the permission dialog is up. A second press during that time is collapsed into the first and
// returns ErrRequestPending without reaching the gateway.
func (c *Coordinator) UseCamera(ctx context.Context) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		slog.Info("COORDINATOR: Permission request already in flight, ignoring press")
		return ErrRequestPending
	}
	if c.mode != Normal {
		mode := c.mode
		c.mu.Unlock()
		return invalid("use_camera", mode)
	}
	c.pending = true
	gen := c.gen
	c.mu.Unlock()

	slog.Info("COORDINATOR: Requesting camera permission")
	state, err := c.gateway.Request(ctx)

	var h capture.Handle
	if err == nil {
		h, err = c.session.Open(ctx, state)
	}

	c.mu.Lock()
	c.pending = false

	if err != nil {
		c.transition("use_camera", c.mode, "", err)
		c.mu.Unlock()
		c.surface(ctx, err)
		return err
	}

	if c.mode != Normal || c.gen != gen {
		mode := c.mode
		c.transition("use_camera", mode, "", ErrSuperseded)
		c.mu.Unlock()
		slog.Info("COORDINATOR: Mode changed while permission was pending, dropping camera", "mode", mode)
		c.closeSession(h)
		return ErrSuperseded
	}

	c.handle = h
	c.transition("use_camera", CameraOpen, "", nil)
	c.mu.Unlock()
	return nil
}

// TakePhoto captures a photo, names it and appends it as a recipe, then closes the camera.
// A device failure keeps the camera open for a retry. A photo that lands after the camera was
// closed is dropped without a message.
func (c *Coordinator) TakePhoto(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != CameraOpen {
		mode := c.mode
		c.mu.Unlock()
		return invalid("take_photo", mode)
	}
	if c.capturing {
		c.mu.Unlock()
		return ErrRequestPending
	}
	c.capturing = true
	h := c.handle
	c.mu.Unlock()

	shot, err := c.session.Capture(ctx, h)
	if errors.Is(err, capture.ErrSessionRace) {
		c.mu.Lock()
		c.capturing = false
		c.log("take_photo", c.mode, c.mode, "", err)
		c.mu.Unlock()
		slog.Info("COORDINATOR: Capture raced with close, ignoring")
		return nil
	}
	if err != nil {
		c.mu.Lock()
		c.capturing = false
		c.transition("take_photo", c.mode, "", err)
		c.mu.Unlock()
		c.surface(ctx, err)
		return err
	}

	title := c.title(ctx, shot)

	c.mu.Lock()
	c.capturing = false
	if c.mode != CameraOpen || c.handle != h {
		c.log("take_photo", c.mode, c.mode, string(shot.Ref), capture.ErrSessionRace)
		c.mu.Unlock()
		slog.Info("COORDINATOR: Camera closed while naming photo, dropping it", "ref", shot.Ref)
		return nil
	}
	c.store.Append(recipes.Entry{Title: title, ImageRef: shot.Ref, CreatedAt: time.Now()})
	c.handle = capture.Handle{}
	c.transition("take_photo", Normal, string(shot.Ref), nil)
	c.mu.Unlock()

	c.closeSession(h)
	slog.Info("COORDINATOR: Photo recipe added", "title", title, "ref", shot.Ref)
	return nil
}

// CloseCamera closes the camera and discards anything in flight. It is a no-op outside CameraOpen.
func (c *Coordinator) CloseCamera(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != CameraOpen {
		c.mu.Unlock()
		return nil
	}
	h := c.handle
	c.handle = capture.Handle{}
	c.transition("close_camera", Normal, "", nil)
	c.mu.Unlock()

	c.closeSession(h)
	return nil
}

// Reset abandons whatever the workflow is doing and returns to Normal. The draft is discarded,
// an open camera is closed, and a permission request still in flight resolves as ErrSuperseded
// instead of opening the camera.
func (c *Coordinator) Reset(ctx context.Context) error {
	c.mu.Lock()
	h := c.handle
	c.handle = capture.Handle{}
	c.draft = ""
	c.gen++
	c.transition("reset", Normal, "", nil)
	c.mu.Unlock()

	if !h.IsZero() {
		c.closeSession(h)
	}
	return nil
}

// Snapshot returns a consistent view of the coordinator for rendering.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Mode:              c.mode,
		DraftTitle:        c.draft,
		Recipes:           c.store.List(),
		Permission:        c.gateway.Query(context.Background()),
		PermissionPending: c.pending,
		Capturing:         c.capturing,
		LastMessage:       c.lastMessage,
	}
}

// Mode returns the current mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// RecipeCount returns the number of recipes in the store.
func (c *Coordinator) RecipeCount() int {
	return c.store.Len()
}

func (c *Coordinator) title(ctx context.Context, shot capture.Shot) string {
	title, err := c.namer.Name(ctx, shot.Photo)
	if err != nil {
		slog.Warn("COORDINATOR: Naming failed, using default title", "error", err)
		return c.defaultTitle
	}
	if title = strings.TrimSpace(title); title == "" {
		return c.defaultTitle
	}
	return title
}

func (c *Coordinator) closeSession(h capture.Handle) {
	if err := c.session.Close(h); err != nil {
		slog.Error("COORDINATOR: Failed to close camera session", "error", err)
	}
}

// transition moves to mode `to` and journals it. Callers hold c.mu.
func (c *Coordinator) transition(event string, to Mode, imageRef string, err error) {
	from := c.mode
	if from != to {
		c.mode = to
		c.gen++
	}
	c.log(event, from, to, imageRef, err)
}

// log journals an event without changing mode. Callers hold c.mu.
func (c *Coordinator) log(event string, from, to Mode, imageRef string, err error) {
	c.seq++
	entry := recipecapture.TransitionLog{
		Sequence:  c.seq,
		Timestamp: time.Now(),
		Event:     event,
		From:      from.String(),
		To:        to.String(),
		Recipes:   c.store.Len(),
		ImageRef:  imageRef,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if c.journal != nil {
		if lerr := c.journal.LogTransition(entry); lerr != nil {
			slog.Error("Failed to log coordinator transition", "error", lerr, "sequence", entry.Sequence)
		}
	}
	slog.Debug("COORDINATOR: Transition", "event", event, "from", from, "to", to, "error", Kind(err))
}

// surface shows err to the user. Must be called without c.mu held.
func (c *Coordinator) surface(ctx context.Context, err error) {
	msg := userMessage(err)

	c.mu.Lock()
	c.lastMessage = msg
	c.mu.Unlock()

	slog.Warn("COORDINATOR: Surfacing failure", "kind", Kind(err), "error", err)
	if c.alerter == nil {
		return
	}
	if aerr := c.alerter.Alert(ctx, alertTitle, msg); aerr != nil {
		slog.Error("COORDINATOR: Failed to deliver alert", "error", aerr)
	}
}
