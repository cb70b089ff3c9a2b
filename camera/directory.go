package camera

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Policy decides how a Directory device answers permission requests.
type Policy string

const (
	PolicyGrant  Policy = "grant"
	PolicyDeny   Policy = "deny"
	PolicyPrompt Policy = "prompt"
)

// ParsePolicy maps a config value to a Policy, defaulting to prompt for anything unknown.
func ParsePolicy(s string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyGrant:
		return PolicyGrant
	case PolicyDeny:
		return PolicyDeny
	default:
		return PolicyPrompt
	}
}

// Prompter asks the user to allow camera access. It plays the role of the native dialog.
type Prompter func(ctx context.Context) (bool, error)

// Directory is a simulated device that "photographs" the image files of a directory in name order,
// wrapping around when it runs out.
type Directory struct {
	dir    string
	policy Policy
	prompt Prompter

	mu       sync.Mutex
	decision Decision
	sessions map[SessionID]bool
	next     int
}

var _ Platform = (*Directory)(nil)

// NewDirectory creates a device reading photos from dir. prompt is only used with PolicyPrompt.
func NewDirectory(dir string, policy Policy, prompt Prompter) *Directory {
	return &Directory{
		dir:      dir,
		policy:   policy,
		prompt:   prompt,
		sessions: make(map[SessionID]bool),
	}
}

func (d *Directory) Supported() bool { return true }

func (d *Directory) QueryPermission(ctx context.Context) (Decision, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.decision, nil
}

// RequestPermission answers per policy. Like most mobile platforms it re-prompts every time
// it is asked; caching a decision is the caller's business.
func (d *Directory) RequestPermission(ctx context.Context) (Decision, error) {
	var decision Decision
	switch d.policy {
	case PolicyGrant:
		decision = DecisionGranted
	case PolicyDeny:
		decision = DecisionDenied
	default:
		if d.prompt == nil {
			return DecisionUndetermined, fmt.Errorf("no prompter configured for %q policy", d.policy)
		}
		ok, err := d.prompt(ctx)
		if err != nil {
			return DecisionUndetermined, fmt.Errorf("permission prompt: %w", err)
		}
		decision = DecisionDenied
		if ok {
			decision = DecisionGranted
		}
	}

	d.mu.Lock()
	d.decision = decision
	d.mu.Unlock()

	slog.Info("CAMERA: Permission decided", "policy", d.policy, "decision", decision)
	return decision, nil
}

func (d *Directory) StartSession(ctx context.Context) (SessionID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.decision != DecisionGranted {
		return "", fmt.Errorf("start session: permission %s", d.decision)
	}
	id := SessionID(uuid.NewString())
	d.sessions[id] = true
	return id, nil
}

func (d *Directory) Capture(ctx context.Context, id SessionID) (Photo, error) {
	d.mu.Lock()
	open := d.sessions[id]
	d.mu.Unlock()
	if !open {
		return Photo{}, ErrNoSession
	}

	files, err := d.photos()
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	if len(files) == 0 {
		return Photo{}, fmt.Errorf("%w: no photos in %s", ErrDeviceFailure, d.dir)
	}

	d.mu.Lock()
	name := files[d.next%len(files)]
	d.next++
	d.mu.Unlock()

	data, err := os.ReadFile(name)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}

	return Photo{Data: data, ContentType: contentType(name)}, nil
}

func (d *Directory) CloseSession(id SessionID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, id)
	return nil
}

func (d *Directory) photos() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".heic", ".webp":
			out = append(out, filepath.Join(d.dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
