// Package solver owns the lifecycle of one remote solving session: it
// initializes sessions, executes step round-trips, mirrors results
// into the grid store, and drives the cancellable auto-run loop.
//
// All mutable state (session handle, run state, in-flight flag) lives
// on the Controller; nothing is package-global. Commands may be issued
// from any goroutine, but the controller serializes them and enforces
// the at-most-one-in-flight-step invariant itself.
package solver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/logging"
)

// Backend is the subset of the inference API the controller needs.
// *api.Client satisfies it; tests substitute a scripted fake.
type Backend interface {
	Initialize(ctx context.Context, puzzle grid.Puzzle, checkpointPath string) (*api.InitializeResponse, error)
	Step(ctx context.Context, sessionID string) (*api.StepResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// DefaultStepDelay is the pause between auto-run steps.
const DefaultStepDelay = 500 * time.Millisecond

// teardownTimeout bounds best-effort session teardown calls.
const teardownTimeout = 5 * time.Second

// Controller drives a remote solving session.
type Controller struct {
	backend Backend
	store   *grid.Store
	log     *logging.Logger

	stepDelay time.Duration
	maxSteps  int
	listener  Listener

	mu           sync.Mutex
	state        RunState
	sessionID    string
	checkpoint   string
	runID        string
	stepIndex    int
	metrics      map[string]float64
	lastErr      error
	stepInFlight bool
	runActive    bool
	stopCh       chan struct{}

	teardowns sync.WaitGroup
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for teardown warnings.
func WithLogger(log *logging.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = log
	}
}

// WithListener registers the event listener.
func WithListener(fn Listener) ControllerOption {
	return func(c *Controller) {
		c.listener = fn
	}
}

// WithStepDelay overrides the inter-step delay for auto-runs.
func WithStepDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.stepDelay = d
	}
}

// WithMaxSteps caps the number of steps one auto-run may take.
// 0 means unlimited.
func WithMaxSteps(n int) ControllerOption {
	return func(c *Controller) {
		c.maxSteps = n
	}
}

// NewController creates a Controller in the idle state.
func NewController(backend Backend, store *grid.Store, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:   backend,
		store:     store,
		log:       logging.Default(),
		stepDelay: DefaultStepDelay,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize creates a new session for the puzzle. An existing session
// is superseded: it gets a best-effort background teardown and the new
// handle replaces it. Fails locally with ErrMissingInput if the
// checkpoint reference is empty, before any network call.
func (c *Controller) Initialize(ctx context.Context, puzzle grid.Puzzle, checkpointRef string) (string, error) {
	if strings.TrimSpace(checkpointRef) == "" {
		return "", fmt.Errorf("%w: checkpoint reference", ErrMissingInput)
	}
	if err := puzzle.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingInput, err)
	}

	c.mu.Lock()
	if c.runActive || c.stepInFlight || c.state == StateInitializing {
		state := c.state
		c.mu.Unlock()
		return "", fmt.Errorf("%w: cannot initialize while %s", ErrInvalidState, state)
	}
	prior := c.sessionID
	priorRun := c.runID
	c.sessionID = ""
	c.checkpoint = checkpointRef
	c.state = StateInitializing
	c.mu.Unlock()

	if prior != "" {
		c.teardownAsync(prior, priorRun)
	}
	c.store.Reset(puzzle)
	c.emit(Event{Kind: EventStateChanged, State: StateInitializing})

	resp, err := c.backend.Initialize(ctx, puzzle, checkpointRef)

	c.mu.Lock()
	if err != nil {
		c.state = StateErrored
		c.lastErr = err
		c.mu.Unlock()
		c.emit(Event{Kind: EventStateChanged, State: StateErrored, Err: err})
		return "", fmt.Errorf("initialize failed: %w", err)
	}
	c.sessionID = resp.SessionID
	c.runID = uuid.NewString()
	c.stepIndex = 0
	c.metrics = nil
	c.lastErr = nil
	c.state = StateAwaitingStep
	runID := c.runID
	c.mu.Unlock()

	c.emit(Event{Kind: EventStateChanged, RunID: runID, State: StateAwaitingStep})
	return resp.SessionID, nil
}

// Step performs one manual step round-trip and applies the result.
// Returns the solver's finished flag. Fails locally with
// ErrMissingSession when no session exists and with ErrInvalidState
// when a step is already in flight, an auto-run is active, or the
// session has finished or errored.
func (c *Controller) Step(ctx context.Context) (bool, error) {
	c.mu.Lock()
	switch {
	case c.sessionID == "":
		c.mu.Unlock()
		return false, ErrMissingSession
	case c.runActive:
		c.mu.Unlock()
		return false, fmt.Errorf("%w: auto-run is active", ErrInvalidState)
	case c.stepInFlight:
		c.mu.Unlock()
		return false, fmt.Errorf("%w: a step is already in flight", ErrInvalidState)
	case !c.state.ready():
		state := c.state
		c.mu.Unlock()
		return false, fmt.Errorf("%w: cannot step while %s", ErrInvalidState, state)
	}
	prevState := c.state
	c.stepInFlight = true
	c.mu.Unlock()

	finished, err := c.executeStep(ctx)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	if finished {
		c.state = StateFinished
	} else {
		c.state = StateAwaitingStep
	}
	state := c.state
	runID := c.runID
	c.mu.Unlock()

	if state != prevState {
		c.emit(Event{Kind: EventStateChanged, RunID: runID, State: state})
	}
	return finished, nil
}

// executeStep performs the network round-trip for one step and merges
// the result into the grid store. The caller must have set
// stepInFlight under the lock; executeStep clears it. On failure the
// controller transitions to the errored state.
func (c *Controller) executeStep(ctx context.Context) (bool, error) {
	c.mu.Lock()
	sessionID := c.sessionID
	runID := c.runID
	c.mu.Unlock()

	resp, err := c.backend.Step(ctx, sessionID)
	if err == nil {
		var p grid.Puzzle
		p, err = grid.FromRows(resp.CurrentGrid)
		if err != nil {
			err = fmt.Errorf("malformed step grid: %w", err)
		} else {
			changes := c.store.ApplyStep(p)
			c.mu.Lock()
			c.stepInFlight = false
			c.stepIndex = resp.Step
			c.metrics = resp.Metrics
			c.mu.Unlock()
			c.emit(Event{
				Kind:     EventStepApplied,
				RunID:    runID,
				State:    c.State(),
				Step:     resp.Step,
				Finished: resp.Finished,
				Changes:  changes,
				Metrics:  resp.Metrics,
			})
			return resp.Finished, nil
		}
	}

	c.mu.Lock()
	c.stepInFlight = false
	c.state = StateErrored
	c.lastErr = err
	c.mu.Unlock()
	c.emit(Event{Kind: EventStateChanged, RunID: runID, State: StateErrored, Err: err})
	return false, fmt.Errorf("step failed: %w", err)
}

// Reset discards the current session and replaces the puzzle. Any
// existing session gets a best-effort background teardown. Not allowed
// while an auto-run or step is in progress.
func (c *Controller) Reset(puzzle grid.Puzzle) error {
	if err := puzzle.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingInput, err)
	}

	c.mu.Lock()
	if c.runActive || c.stepInFlight || c.state == StateInitializing {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot reset while %s", ErrInvalidState, state)
	}
	prior := c.sessionID
	priorRun := c.runID
	c.sessionID = ""
	c.runID = ""
	c.stepIndex = 0
	c.metrics = nil
	c.lastErr = nil
	c.state = StateIdle
	c.mu.Unlock()

	if prior != "" {
		c.teardownAsync(prior, priorRun)
	}
	c.store.Reset(puzzle)
	c.emit(Event{Kind: EventStateChanged, State: StateIdle})
	return nil
}

// Teardown releases the current session without requiring an idle
// controller. Used on shutdown, when an in-flight step may never
// return and Reset would refuse.
func (c *Controller) Teardown() {
	c.mu.Lock()
	prior := c.sessionID
	priorRun := c.runID
	c.sessionID = ""
	c.mu.Unlock()

	if prior != "" {
		c.teardownAsync(prior, priorRun)
	}
}

// teardownAsync releases a stale session in the background. Failures
// are logged and never surfaced: the backend reaps sessions on its
// own, so a lost delete costs nothing.
func (c *Controller) teardownAsync(sessionID, runID string) {
	c.teardowns.Add(1)
	go func() {
		defer c.teardowns.Done()
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		if err := c.backend.DeleteSession(ctx, sessionID); err != nil {
			c.log.Warn("session teardown failed", "session", sessionID, "run", runID, "error", err)
		}
	}()
}

// WaitTeardowns blocks until all background teardowns have returned.
// Tests use this to assert teardown behavior deterministically.
func (c *Controller) WaitTeardowns() {
	c.teardowns.Wait()
}

func (c *Controller) emit(ev Event) {
	if c.listener != nil {
		c.listener(ev)
	}
}

// State returns the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the active session handle, or "" when none exists.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// RunID returns the id of the current run, or "" when no session
// exists. Each successful Initialize starts a new run.
func (c *Controller) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// StepIndex returns the index reported by the most recent step.
func (c *Controller) StepIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepIndex
}

// Metrics returns the diagnostic metrics from the most recent step,
// or nil if the backend sent none.
func (c *Controller) Metrics() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// LastErr returns the error that put the controller into the errored
// state, or nil.
func (c *Controller) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Store returns the grid store the controller applies steps to.
func (c *Controller) Store() *grid.Store {
	return c.store
}
