package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/solver"
	"github.com/gridpilot/gridpilot/internal/testutil"
)

func newTestModel(t *testing.T) (Model, *solver.Controller) {
	t.Helper()

	backend := &testutil.ScriptedBackend{
		SessionID: "tui-test",
		Script:    testutil.StepScript(testutil.SamplePuzzle(), testutil.SampleSolution(), 10),
	}
	store := grid.NewStore(testutil.SamplePuzzle(), grid.WithSettleDelay(0))
	events := make(chan solver.Event, 64)
	ctrl := solver.NewController(backend, store,
		solver.WithListener(func(ev solver.Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)

	m := New(Options{
		Controller: ctrl,
		Checkpoint: testutil.SampleCheckpoint,
		Source:     "random",
		Events:     events,
	})
	return m, ctrl
}

func TestViewRendersGridAndHelp(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	out := m.View()

	assert.Contains(t, out, "gridpilot")
	assert.Contains(t, out, "+-------+-------+-------+")
	assert.Contains(t, out, "step 0")
	assert.Contains(t, out, "s step")
	assert.Contains(t, out, "q quit")
}

func TestViewEmptyWhenQuitting(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.quitting = true
	assert.Empty(t, m.View())
}

func TestUpdateWindowSize(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	assert.Equal(t, 120, next.(Model).width)
}

func TestUpdateKeysIgnoredWhileBusy(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.busy = true

	for _, key := range []string{"s", "a", "r"} {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		assert.Nil(t, cmd, "key %q should be ignored while busy", key)
		assert.True(t, next.(Model).busy)
	}
}

func TestUpdateStepKeyIssuesCommand(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.errText = "stale"

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)
	nm := next.(Model)
	assert.True(t, nm.busy)
	assert.Empty(t, nm.errText)
}

func TestUpdateCommandDoneRecordsError(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.busy = true

	next, _ := m.Update(commandDoneMsg{err: solver.ErrMissingSession})
	nm := next.(Model)
	assert.False(t, nm.busy)
	assert.Contains(t, nm.errText, "no active session")
}

func TestQuitTearsDownWithStepInFlight(t *testing.T) {
	t.Parallel()

	backend := &testutil.ScriptedBackend{
		SessionID:   "tui-test",
		Script:      testutil.StepScript(testutil.SamplePuzzle(), testutil.SampleSolution(), 1),
		StepBarrier: make(chan struct{}),
		StepStarted: make(chan struct{}, 1),
	}
	store := grid.NewStore(testutil.SamplePuzzle())
	ctrl := solver.NewController(backend, store)
	m := New(Options{Controller: ctrl, Checkpoint: testutil.SampleCheckpoint, Source: "random"})

	_, err := ctrl.Initialize(context.Background(), testutil.SamplePuzzle(), testutil.SampleCheckpoint)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.Step(context.Background())
	}()
	<-backend.StepStarted

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)

	// The session is released even though the reset was refused.
	ctrl.WaitTeardowns()
	assert.Equal(t, []string{"tui-test"}, backend.Deleted())

	close(backend.StepBarrier)
	<-done
}

func TestApplyEventRunEndedSetsNotice(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.applyEvent(solver.Event{
		Kind:   solver.EventRunEnded,
		Result: &solver.RunResult{Reason: solver.ExitFinished, Steps: 6},
	})
	assert.Equal(t, "run finished", m.notice)
}

func TestApplyEventStateChangedSurfacesError(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.applyEvent(solver.Event{
		Kind:  solver.EventStateChanged,
		State: solver.StateErrored,
		Err:   solver.ErrInvalidState,
	})
	assert.NotEmpty(t, m.errText)
}

func TestRenderCell(t *testing.T) {
	t.Parallel()

	assert.Contains(t, renderCell(0, grid.CellEmpty), "·")
	assert.Contains(t, renderCell(5, grid.CellFixed), "5")
	assert.Contains(t, renderCell(7, grid.CellChanged), "7")
	assert.Contains(t, renderCell(9, grid.CellSolved), "9")
}

func TestFormatMetricsStableOrder(t *testing.T) {
	t.Parallel()

	got := formatMetrics(map[string]float64{
		"q_halt":     0.91,
		"confidence": 0.5,
	})
	assert.Equal(t, "confidence=0.500 q_halt=0.910", got)
}

func TestShorten(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", shorten("abc", 12))
	long := strings.Repeat("a", 20)
	assert.Equal(t, strings.Repeat("a", 12)+"…", shorten(long, 12))
}
