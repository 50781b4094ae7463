package testutil

import (
	"context"
	"sync"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/grid"
)

// ScriptedBackend is an in-memory solver backend that plays back a
// fixed script of step responses. It satisfies the controller's
// Backend interface and records every call for assertions.
type ScriptedBackend struct {
	mu sync.Mutex

	// SessionID is the handle returned by Initialize.
	SessionID string

	// Script is the sequence of step responses to play back. When
	// the script is exhausted, Step keeps returning the last entry.
	Script []api.StepResponse

	// InitializeErr, StepErr, and DeleteErr, when set, are returned
	// by the corresponding call instead of a normal response.
	InitializeErr error
	StepErr       error
	DeleteErr     error

	// StepErrAt fails only the step call with this 1-based ordinal.
	// 0 disables it.
	StepErrAt int

	// StepBarrier, when non-nil, is received from at the start of
	// every Step call. Tests use it to hold a step in flight.
	StepBarrier chan struct{}

	// StepStarted, when non-nil, gets a non-blocking send as each
	// step call arrives, so tests can observe an in-flight step.
	StepStarted chan struct{}

	initCalls   []initCall
	stepCalls   int
	inFlight    int
	maxInFlight int
	deleted     []string
	nextStep    int
}

type initCall struct {
	puzzle     grid.Puzzle
	checkpoint string
}

// NewScriptedBackend creates a backend returning sessionID with the
// given step script.
func NewScriptedBackend(sessionID string, script []api.StepResponse) *ScriptedBackend {
	return &ScriptedBackend{SessionID: sessionID, Script: script}
}

// Initialize records the call and returns the configured session id.
func (b *ScriptedBackend) Initialize(ctx context.Context, puzzle grid.Puzzle, checkpointPath string) (*api.InitializeResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.InitializeErr != nil {
		return nil, b.InitializeErr
	}
	b.initCalls = append(b.initCalls, initCall{puzzle: puzzle, checkpoint: checkpointPath})
	b.nextStep = 0
	return &api.InitializeResponse{SessionID: b.SessionID, Status: "initialized"}, nil
}

// Step plays back the next scripted response.
func (b *ScriptedBackend) Step(ctx context.Context, sessionID string) (*api.StepResponse, error) {
	b.mu.Lock()
	barrier := b.StepBarrier
	started := b.StepStarted
	b.stepCalls++
	calls := b.stepCalls
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	}()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if barrier != nil {
		select {
		case <-barrier:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StepErr != nil {
		return nil, b.StepErr
	}
	if b.StepErrAt > 0 && calls == b.StepErrAt {
		return nil, &api.HTTPError{StatusCode: 500, Body: "scripted failure"}
	}
	if len(b.Script) == 0 {
		return nil, &api.HTTPError{StatusCode: 404, Body: "session not found"}
	}
	idx := b.nextStep
	if idx >= len(b.Script) {
		idx = len(b.Script) - 1
	} else {
		b.nextStep++
	}
	resp := b.Script[idx]
	return &resp, nil
}

// DeleteSession records the teardown.
func (b *ScriptedBackend) DeleteSession(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.deleted = append(b.deleted, sessionID)
	return nil
}

// InitializeCount returns how many initialize calls were made.
func (b *ScriptedBackend) InitializeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.initCalls)
}

// LastCheckpoint returns the checkpoint path of the most recent
// initialize call, or "".
func (b *ScriptedBackend) LastCheckpoint() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.initCalls) == 0 {
		return ""
	}
	return b.initCalls[len(b.initCalls)-1].checkpoint
}

// StepCount returns how many step calls were made.
func (b *ScriptedBackend) StepCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stepCalls
}

// MaxConcurrentSteps returns the highest number of step calls that
// were in flight at once. A sequential caller keeps this at 1.
func (b *ScriptedBackend) MaxConcurrentSteps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxInFlight
}

// Deleted returns the session ids passed to DeleteSession.
func (b *ScriptedBackend) Deleted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.deleted))
	copy(out, b.deleted)
	return out
}
