package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/logging"
	"github.com/gridpilot/gridpilot/internal/solver"
)

var (
	runCheckpoint string
	runSource     string
	runTestData   string
	runStepDelay  time.Duration
	runMaxSteps   int
	runOneShot    bool
)

// RunOutput is the JSON result of a headless run, written to stdout
// for scripting and CI.
type RunOutput struct {
	SessionID string             `json:"session_id"`
	RunID     string             `json:"run_id"`
	Reason    string             `json:"reason"`
	Steps     int                `json:"steps"`
	Solved    bool               `json:"solved"`
	Grid      [][]int            `json:"grid"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Error     string             `json:"error,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a puzzle headlessly and print the result as JSON",
	Long: `Fetches a puzzle, initializes a session, and auto-runs it to
completion without a TUI. The result is printed as JSON on stdout.

With --one-shot the backend solves the puzzle in a single request
instead of client-paced stepping.`,
	RunE: runHeadless,
}

func init() {
	runCmd.Flags().StringVar(&runCheckpoint, "checkpoint", "", "model checkpoint path (overrides config)")
	runCmd.Flags().StringVar(&runSource, "source", "random", "puzzle source: random or test_data")
	runCmd.Flags().StringVar(&runTestData, "test-data", "", "dataset path when --source=test_data")
	runCmd.Flags().DurationVar(&runStepDelay, "step-delay", 0, "pause between steps (overrides config)")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", 0, "step limit, 0 for unlimited (overrides config)")
	runCmd.Flags().BoolVar(&runOneShot, "one-shot", false, "let the backend solve in one request")
	rootCmd.AddCommand(runCmd)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checkpoint := runCheckpoint
	if checkpoint == "" {
		checkpoint = cfg.Solver.Checkpoint
	}
	if checkpoint == "" {
		return fmt.Errorf("no checkpoint configured; pass --checkpoint or set solver.checkpoint")
	}

	stepDelay := runStepDelay
	if stepDelay == 0 {
		stepDelay = time.Duration(cfg.Solver.StepDelayMS) * time.Millisecond
	}
	maxSteps := runMaxSteps
	if maxSteps == 0 {
		maxSteps = cfg.Solver.MaxSteps
	}

	client := newClient(cfg)

	ctx := cmd.Context()
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	puzzle, err := client.GeneratePuzzle(fetchCtx, runSource, runTestData)
	if err != nil {
		return fmt.Errorf("failed to fetch puzzle: %w", err)
	}

	out, err := headlessSolve(ctx, client, puzzle, checkpoint, stepDelay, maxSteps, runOneShot)
	if err != nil {
		return err
	}
	return writeRunOutput(os.Stdout, out)
}

// headlessSolve drives one puzzle to completion and collects the
// result. Split out from the cobra handler so tests can call it with a
// fake backend.
func headlessSolve(ctx context.Context, client *api.Client, puzzle grid.Puzzle, checkpoint string, stepDelay time.Duration, maxSteps int, oneShot bool) (*RunOutput, error) {
	store := grid.NewStore(puzzle)
	ctrl := solver.NewController(client, store,
		solver.WithLogger(logging.Default()),
		solver.WithStepDelay(stepDelay),
		solver.WithMaxSteps(maxSteps),
	)

	sessionID, err := ctrl.Initialize(ctx, puzzle, checkpoint)
	if err != nil {
		return nil, err
	}
	defer ctrl.WaitTeardowns()

	out := &RunOutput{SessionID: sessionID, RunID: ctrl.RunID()}

	if oneShot {
		resp, err := client.SolveComplete(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("solve failed: %w", err)
		}
		for _, step := range resp.Steps {
			p, perr := grid.FromRows(step.CurrentGrid)
			if perr != nil {
				return nil, fmt.Errorf("malformed step grid: %w", perr)
			}
			store.ApplyStep(p)
			out.Steps = step.Step
			out.Metrics = step.Metrics
		}
		out.Reason = solver.ExitFinished.String()
	} else {
		resultCh, err := ctrl.StartAutoRun(ctx)
		if err != nil {
			return nil, err
		}
		res := <-resultCh
		out.Reason = res.Reason.String()
		out.Steps = res.Steps
		out.Metrics = ctrl.Metrics()
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
	}

	final := store.Current()
	out.Grid = final.Rows()
	out.Solved = final.CountEmpty() == 0

	teardownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if derr := client.DeleteSession(teardownCtx, sessionID); derr != nil {
		logging.Default().Warn("session teardown failed", "session", sessionID, "run", out.RunID, "error", derr)
	}
	return out, nil
}

func writeRunOutput(w io.Writer, out *RunOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
