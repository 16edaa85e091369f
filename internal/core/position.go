package core

import "fmt"

// Position is a cell coordinate on the grid. X grows rightward, Y downward;
// (0,0) is the top-left cell.
type Position struct {
	X, Y int
}

// Step returns the neighboring position one cell away in the direction.
// The result may lie outside the grid; callers bounds-check against it.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// StepN returns the position n cells away in the direction.
func (p Position) StepN(d Direction, n int) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx*n, Y: p.Y + dy*n}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
