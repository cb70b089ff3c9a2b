package recipecapture

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TransitionLogger records every state change the entry coordinator makes.
type TransitionLogger interface {
	LogTransition(transition TransitionLog) error
}

// NewJournalFilePath returns a timestamped journal path so runs don't overwrite each other.
func NewJournalFilePath(dir string) string {
	if dir == "" {
		dir = "./logs"
	}
	return fmt.Sprintf("%s/%d.journal.json", dir, time.Now().Unix())
}

// TransitionLog represents a single coordinator transition
type TransitionLog struct {
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Recipes   int       `json:"recipes"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileTransitionLogger accumulates transitions and writes them as one JSON document on Flush
type FileTransitionLogger struct {
	mu          sync.Mutex
	transitions []TransitionLog
	writer      io.Writer
}

// NewFileTransitionLogger creates a new file-based transition logger
func NewFileTransitionLogger(writer io.Writer) *FileTransitionLogger {
	return &FileTransitionLogger{
		transitions: make([]TransitionLog, 0),
		writer:      writer,
	}
}

// LogTransition buffers a transition (does not flush immediately)
func (l *FileTransitionLogger) LogTransition(transition TransitionLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transitions = append(l.transitions, transition)
	return nil
}

// Flush writes all buffered transitions to the writer
func (l *FileTransitionLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"capture_session": map[string]any{
			"timestamp":   time.Now(),
			"transitions": l.transitions,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transition journal: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write transition journal: %w", err)
	}

	l.transitions = l.transitions[:0]
	return nil
}

// NoOpTransitionLogger discards all transitions
type NoOpTransitionLogger struct{}

// NewNoOpTransitionLogger creates a new no-op transition logger
func NewNoOpTransitionLogger() *NoOpTransitionLogger {
	return &NoOpTransitionLogger{}
}

// LogTransition discards the transition (no-op)
func (nop *NoOpTransitionLogger) LogTransition(transition TransitionLog) error {
	return nil
}

// StdoutTransitionLogger writes each transition as a JSON line (for Lambda/CloudWatch)
type StdoutTransitionLogger struct {
	out io.Writer
}

// NewStdoutTransitionLogger creates a new stdout-based transition logger
func NewStdoutTransitionLogger() *StdoutTransitionLogger {
	return &StdoutTransitionLogger{out: os.Stdout}
}

// LogTransition writes the transition as a JSON line
func (l *StdoutTransitionLogger) LogTransition(transition TransitionLog) error {
	data, err := json.Marshal(transition)
	if err != nil {
		return err
	}
	fmt.Fprintln(l.out, string(data))
	return nil
}
