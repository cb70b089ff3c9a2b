// Package screens holds the login and sign-up forms. A form validates its fields, calls the auth
// provider and reports the outcome as an alert; it never navigates on its own.
package screens

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"recipecapture"
)

const (
	titleError   = "Gabim"
	titleSuccess = "Sukses"
)

// busy guards a form against double submits.
type busy struct {
	mu      sync.Mutex
	loading bool
}

func (b *busy) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loading {
		return false
	}
	b.loading = true
	return true
}

func (b *busy) end() {
	b.mu.Lock()
	b.loading = false
	b.mu.Unlock()
}

// Loading reports whether a submit is in flight. The shell shows it as a disabled button.
func (b *busy) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func blank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func notify(ctx context.Context, alerter recipecapture.Alerter, title, message string) {
	if alerter == nil {
		return
	}
	if err := alerter.Alert(ctx, title, message); err != nil {
		slog.Error("SCREENS: Failed to deliver alert", "title", title, "error", err)
	}
}
