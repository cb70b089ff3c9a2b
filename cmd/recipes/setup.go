package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"recipecapture"
	"recipecapture/app"
)

// session is an app session plus whatever must be flushed when the command exits.
type session struct {
	*app.Session
	cleanup func() error
}

func newSession(ctx context.Context, deps app.Deps) (*session, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}

	journal, closeJournal, err := newJournal(cfg.App.JournalPath)
	if err != nil {
		return nil, err
	}
	cleanups := []func() error{closeJournal}
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}
	deps.Journal = journal

	if cfg.App.OtelEnabled {
		tracerProvider, meterProvider, otelShutdown, err := recipecapture.InitOtel(ctx, cfg.Otel)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return nil, errors.Join(err, cleanup())
		}
		deps.Tracer = tracerProvider.Tracer(recipecapture.TracerNameCoordinator)
		deps.Meter = meterProvider.Meter(recipecapture.MeterNameCoordinator)
		cleanups = append(cleanups, func() error { return otelShutdown(context.Background()) })
	}

	s, err := app.Build(ctx, cfg, deps)
	if err != nil {
		slog.Error("SETUP: Failed to build app session", "error", err)
		return nil, errors.Join(err, cleanup())
	}

	return &session{Session: s, cleanup: cleanup}, nil
}

// newJournal opens a timestamped journal file under dir. An empty dir disables the journal.
func newJournal(dir string) (recipecapture.TransitionLogger, func() error, error) {
	if dir == "" {
		return recipecapture.NewNoOpTransitionLogger(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create journal dir: %w", err)
	}

	path := recipecapture.NewJournalFilePath(filepath.Clean(dir))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	logger := recipecapture.NewFileTransitionLogger(f)
	slog.Info("SETUP: Journaling transitions", "path", path)
	return logger, func() error {
		return errors.Join(logger.Flush(), f.Close())
	}, nil
}
