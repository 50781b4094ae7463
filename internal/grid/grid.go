// Package grid holds the puzzle data model and the local mirror of
// solver state: the immutable clue layout, the live working grid, and
// the per-cell change tracking that drives the display.
package grid

import "fmt"

// Size is the edge length of a puzzle grid.
const Size = 9

// Puzzle is a 9x9 grid of cell values. 0 means empty; 1-9 are filled
// digits. The fixed-size array makes Puzzle a value type: assignment
// copies, == compares, and JSON round-trips as nested arrays.
type Puzzle [Size][Size]int

// Validate checks that every cell value is in the range 0-9.
func (p Puzzle) Validate() error {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p[r][c] < 0 || p[r][c] > 9 {
				return fmt.Errorf("cell (%d,%d) has invalid value %d", r, c, p[r][c])
			}
		}
	}
	return nil
}

// CountEmpty returns the number of empty (zero) cells.
func (p Puzzle) CountEmpty() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p[r][c] == 0 {
				n++
			}
		}
	}
	return n
}

// FromRows builds a Puzzle from a slice-of-slices representation, as
// produced by JSON decoding of backend responses. It fails if the
// shape is not 9x9 or any value is out of range.
func FromRows(rows [][]int) (Puzzle, error) {
	var p Puzzle
	if len(rows) != Size {
		return p, fmt.Errorf("expected %d rows, got %d", Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return p, fmt.Errorf("row %d: expected %d cells, got %d", r, Size, len(row))
		}
		copy(p[r][:], row)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Rows returns the puzzle as a slice-of-slices, for JSON request bodies.
func (p Puzzle) Rows() [][]int {
	rows := make([][]int, Size)
	for r := 0; r < Size; r++ {
		rows[r] = make([]int, Size)
		copy(rows[r], p[r][:])
	}
	return rows
}
