package executor

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// SessionState is the lifecycle position of one transaction session.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateQueuing
	StateCommitting
	StateAborting
	StateConcluded
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueuing:
		return "queuing"
	case StateCommitting:
		return "committing"
	case StateAborting:
		return "aborting"
	case StateConcluded:
		return "concluded"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Session binds one borrowed resource to one transaction attempt. It is
// created per transactional call, never reused, and owned by exactly one
// in-flight operation. Once concluded it refuses further commands.
type Session[R any] struct {
	id       string
	resource R
	state    atomic.Int32
}

func newSession[R any](r R) *Session[R] {
	return &Session[R]{id: uuid.NewString(), resource: r}
}

// ID identifies the session in logs and error messages.
func (s *Session[R]) ID() string { return s.id }

// State returns the session's current lifecycle state.
func (s *Session[R]) State() SessionState {
	return SessionState(s.state.Load())
}

// Resource exposes the underlying resource for queuing commands. It fails
// with ErrSessionConcluded once the transaction has committed or aborted;
// issuing further commands at that point would be a protocol violation.
func (s *Session[R]) Resource() (R, error) {
	if s.State() == StateConcluded {
		var zero R
		return zero, fmt.Errorf("session %s: %w", s.id, ErrSessionConcluded)
	}
	return s.resource, nil
}

func (s *Session[R]) transition(to SessionState) {
	s.state.Store(int32(to))
}
