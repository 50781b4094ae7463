package solver

import (
	"context"
	"fmt"
	"time"
)

// ExitReason indicates why an auto-run ended.
type ExitReason int

const (
	ExitUnknown  ExitReason = iota
	ExitFinished            // Solver reported completion
	ExitStopped             // User stopped the run, or context canceled
	ExitErrored             // A step failed
	ExitMaxSteps            // Hit the configured step limit
)

// String returns a human-readable description of the exit reason.
func (r ExitReason) String() string {
	switch r {
	case ExitFinished:
		return "finished"
	case ExitStopped:
		return "stopped"
	case ExitErrored:
		return "errored"
	case ExitMaxSteps:
		return "max steps"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of one auto-run.
type RunResult struct {
	Reason ExitReason
	Steps  int
	Err    error
}

// StartAutoRun begins the auto-run loop in a background goroutine and
// returns a channel that delivers the run's result. Requires an active
// session, a ready state, and no step in flight; violations fail with
// ErrInvalidState. The loop's only cancellation checkpoints are loop
// entry and the inter-step delay: an in-flight step always completes
// and its result is applied before the loop notices a stop.
func (c *Controller) StartAutoRun(ctx context.Context) (<-chan RunResult, error) {
	c.mu.Lock()
	switch {
	case c.sessionID == "":
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: no active session", ErrInvalidState)
	case c.runActive:
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: auto-run already active", ErrInvalidState)
	case c.stepInFlight:
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: a step is in flight", ErrInvalidState)
	case !c.state.ready():
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot start auto-run while %s", ErrInvalidState, state)
	}
	c.runActive = true
	c.stopCh = make(chan struct{})
	c.state = StateAutoRunning
	runID := c.runID
	c.mu.Unlock()

	c.emit(Event{Kind: EventStateChanged, RunID: runID, State: StateAutoRunning})

	resultCh := make(chan RunResult, 1)
	go func() {
		res := c.autoRun(ctx)
		c.emit(Event{Kind: EventRunEnded, RunID: runID, State: c.State(), Result: &res, Err: res.Err})
		resultCh <- res
	}()
	return resultCh, nil
}

// Stop requests that the auto-run loop end. The request is
// cooperative: a step already in flight completes and its result is
// still applied, but no further step is issued. Stop is idempotent
// and a no-op when no run is active.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.runActive {
		return
	}
	c.runActive = false
	close(c.stopCh)
}

// autoRun is the loop body. Steps are strictly sequential: step N's
// response is fully applied to the grid store before step N+1 is
// issued.
func (c *Controller) autoRun(ctx context.Context) RunResult {
	steps := 0
	for {
		c.mu.Lock()
		active := c.runActive
		stopCh := c.stopCh
		c.mu.Unlock()

		if !active || ctx.Err() != nil {
			c.endRun(StateStopped)
			return RunResult{Reason: ExitStopped, Steps: steps}
		}

		c.mu.Lock()
		c.stepInFlight = true
		c.mu.Unlock()

		finished, err := c.executeStep(ctx)
		if err != nil {
			// executeStep already moved the controller to the
			// errored state and emitted the transition.
			c.mu.Lock()
			if c.runActive {
				c.runActive = false
				close(c.stopCh)
			}
			c.mu.Unlock()
			return RunResult{Reason: ExitErrored, Steps: steps, Err: err}
		}
		steps++

		if finished {
			c.endRun(StateFinished)
			return RunResult{Reason: ExitFinished, Steps: steps}
		}
		if c.maxSteps > 0 && steps >= c.maxSteps {
			c.endRun(StateStopped)
			return RunResult{Reason: ExitMaxSteps, Steps: steps}
		}

		// The inter-step delay is the cancellation checkpoint: a
		// stop or context cancel wakes it early, and the run-active
		// flag is re-checked at the top before the next step.
		select {
		case <-ctx.Done():
		case <-stopCh:
		case <-time.After(c.stepDelay):
		}
	}
}

// endRun clears the run-active flag and moves to the given terminal
// state for this run instance. The state write is conditional: a
// Reset landing between Stop and the loop goroutine waking has
// already moved the controller on, and endRun must not drag it back.
func (c *Controller) endRun(state RunState) {
	c.mu.Lock()
	if c.runActive {
		c.runActive = false
		close(c.stopCh)
	}
	if c.state != StateAutoRunning {
		c.mu.Unlock()
		return
	}
	c.state = state
	runID := c.runID
	c.mu.Unlock()
	c.emit(Event{Kind: EventStateChanged, RunID: runID, State: state})
}
