// Package testutil provides shared fixtures and fakes for gridpilot
// tests: sample puzzles, scripted solver backends, and an HTTP fake of
// the inference service.
package testutil

import (
	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/grid"
)

// SampleCheckpoint is a plausible checkpoint path for tests.
const SampleCheckpoint = "/models/sudoku-1k/step_10000.pt"

// SamplePuzzle returns a solvable 9x9 puzzle with 30 clues.
func SamplePuzzle() grid.Puzzle {
	return grid.Puzzle{
		{5, 3, 0, 0, 7, 0, 0, 0, 0},
		{6, 0, 0, 1, 9, 5, 0, 0, 0},
		{0, 9, 8, 0, 0, 0, 0, 6, 0},
		{8, 0, 0, 0, 6, 0, 0, 0, 3},
		{4, 0, 0, 8, 0, 3, 0, 0, 1},
		{7, 0, 0, 0, 2, 0, 0, 0, 6},
		{0, 6, 0, 0, 0, 0, 2, 8, 0},
		{0, 0, 0, 4, 1, 9, 0, 0, 5},
		{0, 0, 0, 0, 8, 0, 0, 7, 9},
	}
}

// SampleSolution returns the unique solution to SamplePuzzle.
func SampleSolution() grid.Puzzle {
	return grid.Puzzle{
		{5, 3, 4, 6, 7, 8, 9, 1, 2},
		{6, 7, 2, 1, 9, 5, 3, 4, 8},
		{1, 9, 8, 3, 4, 2, 5, 6, 7},
		{8, 5, 9, 7, 6, 1, 4, 2, 3},
		{4, 2, 6, 8, 5, 3, 7, 9, 1},
		{7, 1, 3, 9, 2, 4, 8, 5, 6},
		{9, 6, 1, 5, 3, 7, 2, 8, 4},
		{2, 8, 7, 4, 1, 9, 6, 3, 5},
		{3, 4, 5, 2, 8, 6, 1, 7, 9},
	}
}

// StepScript builds a sequence of step responses that fill the empty
// cells of from with the values of to, cellsPerStep at a time, in
// row-major order. The final response carries finished=true.
func StepScript(from, to grid.Puzzle, cellsPerStep int) []api.StepResponse {
	if cellsPerStep < 1 {
		cellsPerStep = 1
	}

	current := from
	var script []api.StepResponse
	step := 0
	for {
		filled := 0
		for r := 0; r < grid.Size && filled < cellsPerStep; r++ {
			for c := 0; c < grid.Size && filled < cellsPerStep; c++ {
				if current[r][c] == 0 && to[r][c] != 0 {
					current[r][c] = to[r][c]
					filled++
				}
			}
		}
		if filled == 0 {
			break
		}
		step++
		script = append(script, api.StepResponse{
			CurrentGrid: current.Rows(),
			Step:        step,
			Finished:    current == to,
		})
		if current == to {
			break
		}
	}
	return script
}
