// Package alert delivers user-visible messages.
package alert

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"recipecapture"
)

// Message is one alert as the user saw it.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Recorder keeps alerts in memory for the shell to render and for tests to inspect.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

var _ recipecapture.Alerter = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Alert(ctx context.Context, title string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Title: title, Body: message})
	return nil
}

// Messages returns every alert recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent alert.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Drain returns and forgets the recorded alerts.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

// Fanout delivers each alert to every alerter. A failing alerter does not stop the others.
type Fanout []recipecapture.Alerter

func (f Fanout) Alert(ctx context.Context, title string, message string) error {
	var errs []error
	for _, a := range f {
		if err := a.Alert(ctx, title, message); err != nil {
			slog.Warn("ALERT: Delivery failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
