// Package approval holds the paused execution context while a tool call
// waits for a human yes/no decision. There is at most one such context per
// session at any time; the orchestration loop owns the single State instance
// and hands it to the policy hooks — there is no ambient global.
package approval

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrAlreadyPending is returned when SetPending is called while a context is
// already pending or an aborted context has not been consumed. This is a
// programming-logic fault upstream; the existing context is never
// overwritten.
var ErrAlreadyPending = errors.New("approval context already pending")

// ErrNoPending is returned when a cleanup callback is attached with no
// pending context to attach it to.
var ErrNoPending = errors.New("no approval context pending")

// PendingContext is the snapshot held while awaiting a decision. The
// execution state and interruption descriptor are opaque to this package;
// the emitted-ID and argument bookkeeping exist purely so the UI layer
// neither re-renders tool results nor loses argument context across the
// interruption boundary.
type PendingContext struct {
	ID string

	// ExecutionState is the paused execution snapshot, owned by the
	// orchestration loop.
	ExecutionState any

	// Interruption describes the decision being requested from the human.
	Interruption any

	emittedCommandIDs map[string]bool
	toolCallArgs      map[string]map[string]any
	removeInterceptor func()
}

// NewPendingContext snapshots an execution state and the decision request
// that interrupted it.
func NewPendingContext(executionState, interruption any) *PendingContext {
	return &PendingContext{
		ID:                uuid.NewString(),
		ExecutionState:    executionState,
		Interruption:      interruption,
		emittedCommandIDs: make(map[string]bool),
		toolCallArgs:      make(map[string]map[string]any),
	}
}

// MarkEmitted records that the result for a command ID has already been
// rendered.
func (p *PendingContext) MarkEmitted(commandID string) {
	p.emittedCommandIDs[commandID] = true
}

// Emitted reports whether the result for a command ID was already rendered.
func (p *PendingContext) Emitted(commandID string) bool {
	return p.emittedCommandIDs[commandID]
}

// SetToolCallArgs remembers the arguments of a tool call so they survive the
// interruption.
func (p *PendingContext) SetToolCallArgs(callID string, args map[string]any) {
	p.toolCallArgs[callID] = args
}

// ToolCallArgs returns the remembered arguments for a call ID, or nil.
func (p *PendingContext) ToolCallArgs(callID string) map[string]any {
	return p.toolCallArgs[callID]
}

// RunRemoveInterceptor invokes and clears the attached cleanup callback, if
// any. Safe to call more than once.
func (p *PendingContext) RunRemoveInterceptor() {
	if p.removeInterceptor != nil {
		p.removeInterceptor()
		p.removeInterceptor = nil
	}
}

// State is the single-slot approval state machine:
//
//	Empty -> Pending (SetPending)
//	Pending -> Empty (ConsumePending) | Aborted (AbortPending)
//	Aborted -> Empty (ConsumeAborted, one-shot)
//
// All operations are single critical sections; concurrent pending writers
// are a caller error, not a race to resolve.
type State struct {
	mu      sync.Mutex
	pending *PendingContext
	aborted *PendingContext
}

// NewState returns an empty approval state.
func NewState() *State {
	return &State{}
}

// SetPending stores ctx as the sole pending slot. The precondition is an
// empty state; violating it returns ErrAlreadyPending and leaves the
// existing context untouched.
func (s *State) SetPending(ctx *PendingContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil || s.aborted != nil {
		return ErrAlreadyPending
	}
	s.pending = ctx
	return nil
}

// SetPendingRemoveInterceptor attaches a cleanup callback to the current
// pending context so the caller can tear down a subscription even when the
// approval is aborted rather than answered.
func (s *State) SetPendingRemoveInterceptor(cleanup func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return ErrNoPending
	}
	s.pending.removeInterceptor = cleanup
	return nil
}

// GetPending returns the current pending context without consuming it, or
// nil when nothing is pending.
func (s *State) GetPending() *PendingContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// ConsumePending takes the pending context, returning the state to empty.
// Used by the caller resuming normally after a decision.
func (s *State) ConsumePending() *PendingContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	s.pending = nil
	return p
}

// AbortPending moves the pending context, verbatim, into the aborted slot.
// No-op when nothing is pending.
func (s *State) AbortPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return
	}
	s.aborted = s.pending
	s.pending = nil
}

// ConsumeAborted returns the aborted context exactly once and clears the
// slot; later calls return nil. The one-shot read prevents a cancelled
// approval from being replayed twice against the conversation.
func (s *State) ConsumeAborted() *PendingContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.aborted
	s.aborted = nil
	return a
}
