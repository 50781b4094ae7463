package solver

import (
	"github.com/gridpilot/gridpilot/internal/grid"
)

// RunState is the controller's lifecycle state.
type RunState int

const (
	// StateIdle means no session exists.
	StateIdle RunState = iota
	// StateInitializing means an initialize call is outstanding.
	StateInitializing
	// StateAwaitingStep means a session exists and the controller is
	// ready for a manual step or an auto-run.
	StateAwaitingStep
	// StateAutoRunning means the auto-run loop is driving steps.
	StateAutoRunning
	// StateStopped means an auto-run was stopped by the user. A
	// fresh manual step or auto-run may be started from here.
	StateStopped
	// StateFinished means the solver reported completion. Further
	// stepping requires a new session.
	StateFinished
	// StateErrored means a step or initialize failed. Recovery
	// requires re-initialization.
	StateErrored
)

// String returns a human-readable state name.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateAwaitingStep:
		return "awaiting step"
	case StateAutoRunning:
		return "auto-running"
	case StateStopped:
		return "stopped"
	case StateFinished:
		return "finished"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ready reports whether a manual step or auto-run may start from s.
func (s RunState) ready() bool {
	return s == StateAwaitingStep || s == StateStopped
}

// EventKind identifies what an Event describes.
type EventKind int

const (
	// EventStateChanged reports a RunState transition.
	EventStateChanged EventKind = iota
	// EventStepApplied reports one step result merged into the grid.
	EventStepApplied
	// EventRunEnded reports the end of an auto-run.
	EventRunEnded
)

// Event is a state-change notification from the controller. The
// controller never touches presentation state directly; the TUI and
// headless runner observe it through these.
type Event struct {
	Kind  EventKind
	RunID string
	State RunState

	// Step fields, set for EventStepApplied.
	Step     int
	Finished bool
	Changes  []grid.Change
	Metrics  map[string]float64

	// Result is set for EventRunEnded.
	Result *RunResult

	// Err is set when the transition was caused by a failure.
	Err error
}

// Listener receives controller events. It is called synchronously
// from whichever goroutine performed the operation, so it must not
// call back into the controller.
type Listener func(Event)
