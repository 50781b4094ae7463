package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/solver"
)

var (
	fixedStyle   = lipgloss.NewStyle().Bold(true)
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	solvedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// View renders the grid, status line, and key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("gridpilot"))
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(errStyle.Render("error: "+m.errText) + "\n")
	} else if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render("s step · a auto-run · x stop · r new puzzle · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderGrid() string {
	current, states := m.ctrl.Store().Snapshot()

	hline := borderStyle.Render("+-------+-------+-------+")
	var b strings.Builder
	for r := 0; r < grid.Size; r++ {
		if r%3 == 0 {
			b.WriteString(hline + "\n")
		}
		for c := 0; c < grid.Size; c++ {
			if c%3 == 0 {
				b.WriteString(borderStyle.Render("| "))
			}
			b.WriteString(renderCell(current[r][c], states[r][c]))
			b.WriteString(" ")
		}
		b.WriteString(borderStyle.Render("|") + "\n")
	}
	b.WriteString(hline)
	return b.String()
}

func renderCell(value int, state grid.CellState) string {
	if value == 0 {
		return emptyStyle.Render("·")
	}
	s := fmt.Sprintf("%d", value)
	switch state {
	case grid.CellFixed:
		return fixedStyle.Render(s)
	case grid.CellChanged:
		return changedStyle.Render(s)
	case grid.CellSolved:
		return solvedStyle.Render(s)
	default:
		return s
	}
}

func (m Model) renderStatus() string {
	state := m.ctrl.State()

	var parts []string
	if state == solver.StateAutoRunning || state == solver.StateInitializing || m.busy {
		parts = append(parts, m.spin.View()+" "+state.String())
	} else {
		parts = append(parts, state.String())
	}
	parts = append(parts, fmt.Sprintf("step %d", m.ctrl.StepIndex()))
	if id := m.ctrl.SessionID(); id != "" {
		parts = append(parts, "session "+shorten(id, 12))
	}
	if metrics := m.ctrl.Metrics(); len(metrics) > 0 {
		parts = append(parts, formatMetrics(metrics))
	}
	return strings.Join(parts, " | ")
}

// formatMetrics renders step metrics in a stable order.
func formatMetrics(metrics map[string]float64) string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.3f", k, metrics[k]))
	}
	return strings.Join(parts, " ")
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
