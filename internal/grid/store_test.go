package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for settle tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	p := samplePuzzle()
	s := NewStore(p)

	assert.Equal(t, p, s.Fixed())
	assert.Equal(t, p, s.Current())

	_, states := s.Snapshot()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p[r][c] != 0 {
				assert.Equal(t, CellFixed, states[r][c])
			} else {
				assert.Equal(t, CellEmpty, states[r][c])
			}
		}
	}
}

func TestApplyStep(t *testing.T) {
	t.Parallel()

	t.Run("marks changed non-clue cells", func(t *testing.T) {
		t.Parallel()

		p := samplePuzzle()
		s := NewStore(p)

		next := p
		next[0][2] = 4
		next[0][3] = 6

		changes := s.ApplyStep(next)
		require.Len(t, changes, 2)
		assert.Equal(t, Change{Row: 0, Col: 2, Old: 0, New: 4}, changes[0])
		assert.Equal(t, Change{Row: 0, Col: 3, Old: 0, New: 6}, changes[1])

		current, states := s.Snapshot()
		assert.Equal(t, 4, current[0][2])
		assert.Equal(t, CellChanged, states[0][2])
		assert.Equal(t, CellChanged, states[0][3])
	})

	t.Run("never touches fixed clues", func(t *testing.T) {
		t.Parallel()

		p := samplePuzzle()
		s := NewStore(p)

		// A hostile grid that rewrites every cell, clues included.
		var next Puzzle
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				next[r][c] = 1
			}
		}
		s.ApplyStep(next)

		current, states := s.Snapshot()
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if p[r][c] != 0 {
					assert.Equal(t, p[r][c], current[r][c], "clue (%d,%d) must be preserved", r, c)
					assert.Equal(t, CellFixed, states[r][c])
				}
			}
		}
	})

	t.Run("unchanged cells produce no change records", func(t *testing.T) {
		t.Parallel()

		p := samplePuzzle()
		s := NewStore(p)
		assert.Empty(t, s.ApplyStep(p))
	})
}

func TestSettle(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	p := samplePuzzle()
	s := NewStore(p, WithClock(clock.Now), WithSettleDelay(500*time.Millisecond))

	next := p
	next[0][2] = 4
	s.ApplyStep(next)
	require.True(t, s.Pending())

	// Before the delay elapses nothing settles.
	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, s.Settle())
	_, states := s.Snapshot()
	assert.Equal(t, CellChanged, states[0][2])

	clock.Advance(1 * time.Millisecond)
	assert.Equal(t, 1, s.Settle())
	_, states = s.Snapshot()
	assert.Equal(t, CellSolved, states[0][2])
	assert.False(t, s.Pending())
}

func TestReset(t *testing.T) {
	t.Parallel()

	p := samplePuzzle()
	s := NewStore(p)

	next := p
	next[0][2] = 4
	s.ApplyStep(next)

	var fresh Puzzle
	fresh[4][4] = 9
	s.Reset(fresh)

	assert.Equal(t, fresh, s.Fixed())
	assert.Equal(t, fresh, s.Current())
	assert.False(t, s.Pending())

	_, states := s.Snapshot()
	assert.Equal(t, CellFixed, states[4][4])
	assert.Equal(t, CellEmpty, states[0][2])
}
