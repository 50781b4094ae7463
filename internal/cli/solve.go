package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/logging"
	"github.com/gridpilot/gridpilot/internal/solver"
	"github.com/gridpilot/gridpilot/internal/tui"
)

var (
	solveCheckpoint string
	solveSource     string
	solveTestData   string
	solveStepDelay  time.Duration
	solveMaxSteps   int
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a puzzle interactively",
	Long: `Fetches a puzzle from the backend, initializes a solving session,
and opens the interactive grid view.

Keys: s steps once, a starts the automatic run, x stops it, r fetches
a new puzzle, q quits.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveCheckpoint, "checkpoint", "", "model checkpoint path (overrides config)")
	solveCmd.Flags().StringVar(&solveSource, "source", "random", "puzzle source: random or test_data")
	solveCmd.Flags().StringVar(&solveTestData, "test-data", "", "dataset path when --source=test_data")
	solveCmd.Flags().DurationVar(&solveStepDelay, "step-delay", 0, "pause between auto-run steps (overrides config)")
	solveCmd.Flags().IntVar(&solveMaxSteps, "max-steps", 0, "auto-run step limit, 0 for unlimited (overrides config)")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checkpoint := solveCheckpoint
	if checkpoint == "" {
		checkpoint = cfg.Solver.Checkpoint
	}
	if checkpoint == "" {
		return fmt.Errorf("no checkpoint configured; pass --checkpoint or set solver.checkpoint")
	}

	stepDelay := solveStepDelay
	if stepDelay == 0 {
		stepDelay = time.Duration(cfg.Solver.StepDelayMS) * time.Millisecond
	}
	maxSteps := solveMaxSteps
	if maxSteps == 0 {
		maxSteps = cfg.Solver.MaxSteps
	}

	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	puzzle, err := client.GeneratePuzzle(ctx, solveSource, solveTestData)
	if err != nil {
		return fmt.Errorf("failed to fetch puzzle: %w", err)
	}

	store := grid.NewStore(puzzle,
		grid.WithSettleDelay(time.Duration(cfg.Solver.SettleDelayMS)*time.Millisecond))

	// Buffered so the controller never blocks on a slow renderer.
	events := make(chan solver.Event, 64)
	ctrl := solver.NewController(client, store,
		solver.WithLogger(logging.Default()),
		solver.WithStepDelay(stepDelay),
		solver.WithMaxSteps(maxSteps),
		solver.WithListener(func(ev solver.Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)

	model := tui.New(tui.Options{
		Controller:   ctrl,
		Client:       client,
		Checkpoint:   checkpoint,
		Source:       solveSource,
		TestDataPath: solveTestData,
		Events:       events,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	ctrl.WaitTeardowns()
	return nil
}
