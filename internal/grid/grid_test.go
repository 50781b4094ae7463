package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePuzzle() Puzzle {
	return Puzzle{
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

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well-formed puzzle", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, samplePuzzle().Validate())
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		t.Parallel()

		p := samplePuzzle()
		p[3][4] = 10
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "(3,4)")

		p = samplePuzzle()
		p[0][0] = -1
		require.Error(t, p.Validate())
	})
}

func TestCountEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 51, samplePuzzle().CountEmpty())
	assert.Equal(t, 81, Puzzle{}.CountEmpty())
}

func TestFromRows(t *testing.T) {
	t.Parallel()

	t.Run("round-trips through Rows", func(t *testing.T) {
		t.Parallel()

		p := samplePuzzle()
		got, err := FromRows(p.Rows())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("rejects wrong row count", func(t *testing.T) {
		t.Parallel()

		_, err := FromRows(make([][]int, 8))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rows")
	})

	t.Run("rejects a short row", func(t *testing.T) {
		t.Parallel()

		rows := samplePuzzle().Rows()
		rows[4] = rows[4][:8]
		_, err := FromRows(rows)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 4")
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()

		rows := samplePuzzle().Rows()
		rows[0][0] = 11
		_, err := FromRows(rows)
		require.Error(t, err)
	})
}

func TestPuzzleJSON(t *testing.T) {
	t.Parallel()

	// Backend bodies are nested arrays; the fixed-size array type
	// must decode them directly.
	data, err := json.Marshal(samplePuzzle())
	require.NoError(t, err)

	var got Puzzle
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, samplePuzzle(), got)
}
