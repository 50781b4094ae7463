package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpilot/gridpilot/internal/grid"
)

func TestSamplePuzzle(t *testing.T) {
	t.Parallel()

	p := SamplePuzzle()
	require.NoError(t, p.Validate())
	assert.Equal(t, 51, p.CountEmpty())

	sol := SampleSolution()
	require.NoError(t, sol.Validate())
	assert.Equal(t, 0, sol.CountEmpty())

	// The solution agrees with the puzzle's clues.
	for r := 0; r < grid.Size; r++ {
		for c := 0; c < grid.Size; c++ {
			if p[r][c] != 0 {
				assert.Equal(t, p[r][c], sol[r][c], "clue (%d,%d)", r, c)
			}
		}
	}
}

func TestStepScript(t *testing.T) {
	t.Parallel()

	t.Run("fills all empty cells and finishes", func(t *testing.T) {
		t.Parallel()

		script := StepScript(SamplePuzzle(), SampleSolution(), 10)
		require.Len(t, script, 6) // 51 empty cells, 10 per step

		for i, step := range script {
			assert.Equal(t, i+1, step.Step)
		}
		assert.False(t, script[0].Finished)
		assert.True(t, script[len(script)-1].Finished)

		final, err := grid.FromRows(script[len(script)-1].CurrentGrid)
		require.NoError(t, err)
		assert.Equal(t, SampleSolution(), final)
	})

	t.Run("one cell per step", func(t *testing.T) {
		t.Parallel()

		script := StepScript(SamplePuzzle(), SampleSolution(), 1)
		assert.Len(t, script, 51)
	})

	t.Run("empty delta produces no steps", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, StepScript(SampleSolution(), SampleSolution(), 1))
	})
}
