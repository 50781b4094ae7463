package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpilot/gridpilot/internal/api"
	"github.com/gridpilot/gridpilot/internal/testutil"
)

func TestListModels(t *testing.T) {
	t.Parallel()

	t.Run("prints a table", func(t *testing.T) {
		t.Parallel()

		fb := testutil.NewFakeBackend("abc123", nil)
		defer fb.Close()
		fb.Models = []api.Model{
			{Game: "sudoku-extreme-1k", Filename: "step_10000.pt", Path: "/app/models/sudoku-extreme-1k/step_10000.pt", SizeMB: 108.5, HasConfig: true},
			{Game: "maze-hard", Filename: "step_5000.pt", Path: "/app/models/maze-hard/step_5000.pt", SizeMB: 96.0, HasConfig: false},
		}

		var buf bytes.Buffer
		require.NoError(t, listModels(context.Background(), api.NewClient(fb.URL), &buf))

		out := buf.String()
		assert.Contains(t, out, "sudoku-extreme-1k")
		assert.Contains(t, out, "step_10000.pt")
		assert.Contains(t, out, "108.5 MB")
		assert.Contains(t, out, "maze-hard")
	})

	t.Run("reports an empty backend", func(t *testing.T) {
		t.Parallel()

		fb := testutil.NewFakeBackend("abc123", nil)
		defer fb.Close()

		var buf bytes.Buffer
		require.NoError(t, listModels(context.Background(), api.NewClient(fb.URL), &buf))
		assert.Contains(t, buf.String(), "No models found.")
	})
}

func TestListDatasets(t *testing.T) {
	t.Parallel()

	fb := testutil.NewFakeBackend("abc123", nil)
	defer fb.Close()
	fb.Files = []api.TestDataFile{
		{Path: "/app/data/sudoku/test.npz", Name: "test.npz", SizeMB: 12.3, Shape: "(1000, 81)"},
	}

	var buf bytes.Buffer
	require.NoError(t, listDatasets(context.Background(), api.NewClient(fb.URL), &buf))

	out := buf.String()
	assert.Contains(t, out, "test.npz")
	assert.Contains(t, out, "(1000, 81)")
}

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	fb := testutil.NewFakeBackend("abc123", nil)
	defer fb.Close()

	var buf bytes.Buffer
	require.NoError(t, checkHealth(context.Background(), api.NewClient(fb.URL), &buf))

	out := buf.String()
	assert.Contains(t, out, "status: healthy")
	assert.Contains(t, out, "model: loaded")
}
