// Package session holds the recording-session state machine shared by the
// capture, sampling, aggregation, and export components.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle phase of a recording session.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateFinalizing State = "finalizing"
	StateComplete   State = "complete"
	StateFailed     State = "failed"
)

// Session is one start-to-stop recording/analysis cycle. Audio chunks can
// only be appended while recording, so the buffer is always empty while the
// session is idle and non-decreasing in length until finalization.
type Session struct {
	ID string

	mu        sync.Mutex
	state     State
	startedAt time.Time
	chunks    [][]byte
}

// New returns an idle session with a fresh ID.
func New() *Session {
	return &Session{ID: uuid.New().String(), state: StateIdle}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt returns the wall-clock reference set when recording began.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Begin transitions Idle -> Recording and records the start time.
func (s *Session) Begin(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("cannot begin recording from state %q", s.state)
	}
	s.state = StateRecording
	s.startedAt = now
	return nil
}

// AppendChunk buffers a piece of recorder output. Chunks arriving outside the
// recording phase are dropped.
func (s *Session) AppendChunk(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording || len(b) == 0 {
		return
	}
	s.chunks = append(s.chunks, b)
}

// BeginFinalize transitions Recording -> Finalizing.
func (s *Session) BeginFinalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return fmt.Errorf("cannot finalize from state %q", s.state)
	}
	s.state = StateFinalizing
	return nil
}

// Complete marks a finalizing session as done.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinalizing {
		return fmt.Errorf("cannot complete from state %q", s.state)
	}
	s.state = StateComplete
	return nil
}

// Fail marks the session failed, from any phase.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
}

// Audio concatenates the buffered chunks in append order.
func (s *Session) Audio() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, c := range s.chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	return out
}

// ChunkCount returns the number of buffered chunks.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Elapsed returns the wall-clock offset since recording began, or zero if it
// never did.
func (s *Session) Elapsed(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return now.Sub(s.startedAt)
}

// FrameResult is one classified still frame from the live display feed.
type FrameResult struct {
	Offset time.Duration // capture offset from session start
	Time   string        // formatted offset, e.g. "01:40"
	Label  string        // classifier label, free text ("Real", "Fake", ...)
	Score  float64       // confidence as a percentage, 0..100
	Image  []byte        // the JPEG that was classified
}
