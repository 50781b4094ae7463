package grid

import (
	"sync"
	"time"
)

// CellState classifies a cell for display purposes.
type CellState int

const (
	// CellEmpty is an unfilled cell.
	CellEmpty CellState = iota
	// CellFixed is an original clue. Fixed cells are permanently
	// read-only and never compared or re-marked by ApplyStep.
	CellFixed
	// CellChanged was filled or rewritten by a recent step and has
	// not yet settled.
	CellChanged
	// CellSolved was filled by an earlier step and has settled.
	CellSolved
)

// String returns the string representation of the cell state.
func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "empty"
	case CellFixed:
		return "fixed"
	case CellChanged:
		return "changed"
	case CellSolved:
		return "solved"
	default:
		return "unknown"
	}
}

// DefaultSettleDelay is how long a cell stays in the "changed" state
// before settling into "solved".
const DefaultSettleDelay = 500 * time.Millisecond

// Change records a single cell mutation produced by one step.
type Change struct {
	Row, Col int
	Old, New int
}

// Store tracks the fixed clue layout, the live working grid, and the
// per-cell display state across applied steps. The zero value is not
// usable; create one with NewStore.
//
// The clue invariant: a cell that is nonzero in the fixed puzzle holds
// the same value in the current grid at all times. ApplyStep skips
// fixed cells entirely, so a misbehaving backend cannot overwrite a
// clue locally.
type Store struct {
	mu          sync.Mutex
	fixed       Puzzle
	current     Puzzle
	states      [Size][Size]CellState
	changedAt   [Size][Size]time.Time
	settleDelay time.Duration
	now         func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSettleDelay overrides the changed-to-solved settle delay.
func WithSettleDelay(d time.Duration) StoreOption {
	return func(s *Store) {
		s.settleDelay = d
	}
}

// WithClock overrides the clock, for deterministic tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store initialized to the given puzzle. Every
// nonzero cell becomes a fixed clue.
func NewStore(p Puzzle, opts ...StoreOption) *Store {
	s := &Store{
		settleDelay: DefaultSettleDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked(p)
	return s
}

// Reset replaces both the fixed layout and the working grid with the
// given puzzle and clears all transient markers. The caller is
// responsible for tearing down any session bound to the old puzzle;
// the store itself knows nothing about sessions.
func (s *Store) Reset(p Puzzle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(p)
}

func (s *Store) resetLocked(p Puzzle) {
	s.fixed = p
	s.current = p
	s.changedAt = [Size][Size]time.Time{}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p[r][c] != 0 {
				s.states[r][c] = CellFixed
			} else {
				s.states[r][c] = CellEmpty
			}
		}
	}
}

// ApplyStep merges a step result grid into the working grid. Every
// non-clue cell whose value differs is replaced, marked changed, and
// scheduled to settle after the settle delay. Returns the cells that
// changed, in row-major order.
func (s *Store) ApplyStep(newGrid Puzzle) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var changes []Change
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.fixed[r][c] != 0 {
				continue
			}
			if newGrid[r][c] == s.current[r][c] {
				continue
			}
			changes = append(changes, Change{Row: r, Col: c, Old: s.current[r][c], New: newGrid[r][c]})
			s.current[r][c] = newGrid[r][c]
			s.states[r][c] = CellChanged
			s.changedAt[r][c] = now
		}
	}
	return changes
}

// Settle transitions any "changed" cell whose settle delay has elapsed
// into "solved". Returns the number of cells settled. Callers drive
// this from a timer; the store schedules nothing itself.
func (s *Store) Settle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	settled := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.states[r][c] != CellChanged {
				continue
			}
			if now.Sub(s.changedAt[r][c]) >= s.settleDelay {
				s.states[r][c] = CellSolved
				settled++
			}
		}
	}
	return settled
}

// Pending reports whether any cell is still in the "changed" state.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.states[r][c] == CellChanged {
				return true
			}
		}
	}
	return false
}

// Fixed returns the immutable clue layout.
func (s *Store) Fixed() Puzzle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixed
}

// Current returns the live working grid.
func (s *Store) Current() Puzzle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Snapshot returns the working grid together with the display state of
// every cell, as one consistent view.
func (s *Store) Snapshot() (Puzzle, [Size][Size]CellState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.states
}
