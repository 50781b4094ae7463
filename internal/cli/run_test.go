package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/solver"
	"github.com/gridpilot/gridpilot/internal/testutil"
)

func TestHeadlessSolve(t *testing.T) {
	t.Parallel()

	t.Run("client-paced run solves the puzzle", func(t *testing.T) {
		t.Parallel()

		script := testutil.StepScript(testutil.SamplePuzzle(), testutil.SampleSolution(), 10)
		fb := testutil.NewFakeBackend("abc123", script)
		defer fb.Close()

		client := api.NewClient(fb.URL)
		out, err := headlessSolve(context.Background(), client, testutil.SamplePuzzle(), testutil.SampleCheckpoint, time.Millisecond, 0, false)
		require.NoError(t, err)

		assert.Equal(t, "abc123", out.SessionID)
		assert.NotEmpty(t, out.RunID)
		assert.Equal(t, solver.ExitFinished.String(), out.Reason)
		assert.Equal(t, len(script), out.Steps)
		assert.True(t, out.Solved)
		assert.Equal(t, testutil.SampleSolution().Rows(), out.Grid)
		assert.Empty(t, out.Error)
	})

	t.Run("one-shot run applies every step", func(t *testing.T) {
		t.Parallel()

		script := testutil.StepScript(testutil.SamplePuzzle(), testutil.SampleSolution(), 25)
		fb := testutil.NewFakeBackend("abc123", script)
		defer fb.Close()

		client := api.NewClient(fb.URL)
		out, err := headlessSolve(context.Background(), client, testutil.SamplePuzzle(), testutil.SampleCheckpoint, time.Millisecond, 0, true)
		require.NoError(t, err)

		assert.Equal(t, solver.ExitFinished.String(), out.Reason)
		assert.Equal(t, len(script), out.Steps)
		assert.True(t, out.Solved)
	})

	t.Run("max steps caps the run", func(t *testing.T) {
		t.Parallel()

		script := testutil.StepScript(testutil.SamplePuzzle(), testutil.SampleSolution(), 1)
		fb := testutil.NewFakeBackend("abc123", script)
		defer fb.Close()

		client := api.NewClient(fb.URL)
		out, err := headlessSolve(context.Background(), client, testutil.SamplePuzzle(), testutil.SampleCheckpoint, time.Millisecond, 3, false)
		require.NoError(t, err)

		assert.Equal(t, solver.ExitMaxSteps.String(), out.Reason)
		assert.Equal(t, 3, out.Steps)
		assert.False(t, out.Solved)
	})
}

func TestWriteRunOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := &RunOutput{
		SessionID: "abc123",
		RunID:     "f8b6f0c2-5f3a-4ab2-9a6e-1c9f6d1a2b3c",
		Reason:    "finished",
		Steps:     6,
		Solved:    true,
		Grid:      testutil.SampleSolution().Rows(),
	}
	require.NoError(t, writeRunOutput(&buf, out))

	var decoded RunOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *out, decoded)
}
