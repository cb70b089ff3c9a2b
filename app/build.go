package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"recipecapture"
	"recipecapture/alert"
	"recipecapture/camera"
	"recipecapture/capture"
	"recipecapture/capture/storage"
	"recipecapture/coordinator"
	"recipecapture/permission"
	"recipecapture/recipes"
)

// Deps are the collaborators a binary hands to Build. Nil fields are built from Config.
type Deps struct {
	Platform   camera.Platform
	Prompter   camera.Prompter
	Images     storage.ImageStore
	Auth       recipecapture.AuthProvider
	HTTPClient recipecapture.HTTPClient
	Journal    recipecapture.TransitionLogger
	Tracer     trace.Tracer
	Meter      metric.Meter
}

// Session is a fully wired App plus the pieces the binaries inspect directly.
type Session struct {
	*App
	Recipes *recipes.Store
	Images  storage.ImageStore
	Alerts  *alert.Recorder
}

// Build wires a Session from cfg. Tracer and Meter together turn on the instrumented coordinator.
func Build(ctx context.Context, cfg Config, deps Deps) (*Session, error) {
	platform := deps.Platform
	if platform == nil {
		platform = NewPlatform(cfg.Camera, deps.Prompter)
	}

	images := deps.Images
	if images == nil {
		var err error
		if images, err = NewImageStore(ctx, cfg.Storage); err != nil {
			return nil, err
		}
	}

	authProvider := deps.Auth
	if authProvider == nil {
		var err error
		if authProvider, err = NewAuth(cfg.Auth, deps.HTTPClient); err != nil {
			return nil, fmt.Errorf("failed to create auth provider: %w", err)
		}
	}

	namer, err := NewNamer(ctx, cfg.Naming, cfg.App.DefaultPhotoTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to create namer: %w", err)
	}

	recorder, alerter := NewAlerter(cfg.App, deps.HTTPClient)

	gateway := permission.NewGateway(platform, permission.Policy{ReRequestAfterDenial: cfg.Camera.ReRequestAfterDenial})
	if state, err := gateway.Sync(ctx); err != nil {
		slog.Warn("SETUP: Could not read remembered camera permission", "error", err)
	} else {
		slog.Info("SETUP: Camera permission", "state", state)
	}

	store := recipes.NewStore()
	opts := []coordinator.Option{
		coordinator.WithDefaultTitle(cfg.App.DefaultPhotoTitle),
		coordinator.WithNamer(namer),
		coordinator.WithAlerter(alerter),
	}
	if deps.Journal != nil {
		opts = append(opts, coordinator.WithTransitionLogger(deps.Journal))
	}
	coord := coordinator.NewCoordinator(gateway, capture.NewSession(platform, images), store, opts...)

	var entry coordinator.Workflow = coord
	if deps.Tracer != nil && deps.Meter != nil {
		entry = coordinator.NewInstrumentedCoordinator(coord, deps.Tracer, deps.Meter)
	}

	slog.Info("SETUP: App session ready",
		"camera_supported", platform.Supported(),
		"image_store", cfg.Storage.Backend,
		"auth", cfg.Auth.Backend,
		"namer", cfg.Naming.Backend,
	)

	return &Session{
		App:     New(entry, authProvider, alerter),
		Recipes: store,
		Images:  images,
		Alerts:  recorder,
	}, nil
}
