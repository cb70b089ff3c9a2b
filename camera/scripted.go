package camera

import (
	"context"
	"fmt"
	"sync"
)

// Scripted is a deterministic in-memory platform for testing. Configure the exported fields
// before handing it out; the counters are safe to read concurrently.
//
// RequestGate and CaptureGate, when non-nil, hold the matching call until a value is sent or the
// channel is closed, which lets a test keep a permission dialog or a capture "in flight".
type Scripted struct {
	Unsupported bool
	Answer      Decision
	RequestErr  error
	Photo       Photo
	CaptureErr  error
	RequestGate chan struct{}
	CaptureGate chan struct{}

	mu       sync.Mutex
	decision Decision
	open     map[SessionID]bool
	seq      int
	requests int
	captures int
	closes   int
}

var _ Platform = (*Scripted)(nil)

// NewScripted returns a supported platform that answers permission requests with answer.
func NewScripted(answer Decision) *Scripted {
	return &Scripted{
		Answer: answer,
		Photo:  Photo{Data: []byte("\xff\xd8\xff\xe0fake-jpeg"), ContentType: "image/jpeg"},
	}
}

func (s *Scripted) Supported() bool { return !s.Unsupported }

func (s *Scripted) QueryPermission(ctx context.Context) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decision, nil
}

func (s *Scripted) RequestPermission(ctx context.Context) (Decision, error) {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	if s.RequestGate != nil {
		select {
		case <-s.RequestGate:
		case <-ctx.Done():
			return DecisionUndetermined, ctx.Err()
		}
	}
	if s.RequestErr != nil {
		return DecisionUndetermined, s.RequestErr
	}

	s.mu.Lock()
	s.decision = s.Answer
	s.mu.Unlock()
	return s.Answer, nil
}

func (s *Scripted) StartSession(ctx context.Context) (SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		s.open = make(map[SessionID]bool)
	}
	s.seq++
	id := SessionID(fmt.Sprintf("scripted-%d", s.seq))
	s.open[id] = true
	return id, nil
}

func (s *Scripted) Capture(ctx context.Context, id SessionID) (Photo, error) {
	s.mu.Lock()
	s.captures++
	open := s.open[id]
	s.mu.Unlock()

	if !open {
		return Photo{}, ErrNoSession
	}
	if s.CaptureGate != nil {
		select {
		case <-s.CaptureGate:
		case <-ctx.Done():
			return Photo{}, ctx.Err()
		}
	}
	if s.CaptureErr != nil {
		return Photo{}, s.CaptureErr
	}
	return s.Photo, nil
}

func (s *Scripted) CloseSession(id SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	delete(s.open, id)
	return nil
}

// Requests reports how many times RequestPermission was called.
func (s *Scripted) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Captures reports how many times Capture was called.
func (s *Scripted) Captures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captures
}

// Closes reports how many times CloseSession was called.
func (s *Scripted) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// OpenSessions reports how many sessions are currently open.
func (s *Scripted) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}
