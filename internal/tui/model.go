// Package tui is the interactive control surface: a bubbletea program
// that renders the grid, relays key commands to the solver controller,
// and animates cell changes as step results arrive.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/solver"
)

// settleTickInterval drives the changed-to-solved cell animation.
const settleTickInterval = 100 * time.Millisecond

// controllerEventMsg wraps a controller event for delivery through the
// bubbletea message loop.
type controllerEventMsg struct {
	event solver.Event
}

// settleTickMsg is sent periodically while cells are waiting to settle.
type settleTickMsg struct{}

// commandDoneMsg reports completion of an asynchronous controller
// command issued from a keypress.
type commandDoneMsg struct {
	err error
}

// newPuzzleMsg delivers a freshly generated puzzle.
type newPuzzleMsg struct {
	puzzle grid.Puzzle
	err    error
}

// Options configures the TUI.
type Options struct {
	Controller *solver.Controller
	Client     *api.Client
	Checkpoint string
	// Source is the puzzle source used when the user asks for a new
	// puzzle ("random" or "test_data").
	Source       string
	TestDataPath string
	// Events must be the channel the controller's listener writes to.
	Events <-chan solver.Event
}

// Model is the bubbletea model for the solve view.
type Model struct {
	ctrl       *solver.Controller
	client     *api.Client
	checkpoint string
	source     string
	testData   string
	events     <-chan solver.Event

	spin     spinner.Model
	width    int
	busy     bool
	notice   string
	errText  string
	quitting bool
}

// New creates the TUI model. The controller must already hold the
// opening puzzle in its store; the session is initialized on start.
func New(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{
		ctrl:       opts.Controller,
		client:     opts.Client,
		checkpoint: opts.Checkpoint,
		source:     opts.Source,
		testData:   opts.TestDataPath,
		events:     opts.Events,
		spin:       sp,
		width:      80,
	}
}

// Init starts the event pump and initializes the first session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.waitForEvent(),
		m.initializeCmd(m.ctrl.Store().Fixed()),
		settleTick(),
	)
}

// waitForEvent blocks on the controller event channel and re-emits the
// next event as a bubbletea message.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return controllerEventMsg{event: ev}
	}
}

func settleTick() tea.Cmd {
	return tea.Tick(settleTickInterval, func(time.Time) tea.Msg {
		return settleTickMsg{}
	})
}

func (m Model) initializeCmd(puzzle grid.Puzzle) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Initialize(context.Background(), puzzle, m.checkpoint)
		return commandDoneMsg{err: err}
	}
}

func (m Model) stepCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Step(context.Background())
		return commandDoneMsg{err: err}
	}
}

func (m Model) startRunCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.StartAutoRun(context.Background())
		return commandDoneMsg{err: err}
	}
}

func (m Model) newPuzzleCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		p, err := m.client.GeneratePuzzle(ctx, m.source, m.testData)
		return newPuzzleMsg{puzzle: p, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case controllerEventMsg:
		m.applyEvent(msg.event)
		return m, m.waitForEvent()

	case settleTickMsg:
		m.ctrl.Store().Settle()
		return m, settleTick()

	case commandDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case newPuzzleMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		if err := m.ctrl.Reset(msg.puzzle); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.notice = "new puzzle"
		m.busy = true
		return m, m.initializeCmd(msg.puzzle)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.ctrl.Stop()
		// Reset tears down the session in the background. With a
		// step still in flight it refuses, so fall back to a bare
		// session teardown.
		if err := m.ctrl.Reset(m.ctrl.Store().Fixed()); err != nil {
			m.ctrl.Teardown()
		}
		return m, tea.Quit

	case "s":
		if m.busy || m.ctrl.State() == solver.StateAutoRunning {
			return m, nil
		}
		m.errText = ""
		m.busy = true
		return m, m.stepCmd()

	case "a":
		if m.busy || m.ctrl.State() == solver.StateAutoRunning {
			return m, nil
		}
		m.errText = ""
		return m, m.startRunCmd()

	case "x":
		m.ctrl.Stop()
		return m, nil

	case "r":
		if m.busy || m.ctrl.State() == solver.StateAutoRunning {
			return m, nil
		}
		m.errText = ""
		m.busy = true
		return m, m.newPuzzleCmd()
	}
	return m, nil
}

// applyEvent folds a controller event into the view state.
func (m *Model) applyEvent(ev solver.Event) {
	switch ev.Kind {
	case solver.EventStateChanged:
		if ev.Err != nil {
			m.errText = ev.Err.Error()
		}
	case solver.EventStepApplied:
		m.notice = ""
	case solver.EventRunEnded:
		if ev.Result != nil {
			m.notice = "run " + ev.Result.Reason.String()
		}
	}
}
