// Package core provides the leaf types shared by the game definition model,
// the grid, and the engine. It contains no external dependencies (especially
// no Bubble Tea) to keep the engine pure and testable.
package core

// Direction is one of the four cardinal directions a rule is evaluated in
// and an object can move toward.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Delta returns the grid offset of one step in the direction.
// Y grows downward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Horizontal reports whether the direction is left or right.
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// Clockwise returns the direction rotated a quarter turn clockwise.
// Used to resolve perpendicular movement markers in directional rules.
func (d Direction) Clockwise() Direction {
	switch d {
	case DirUp:
		return DirRight
	case DirRight:
		return DirDown
	case DirDown:
		return DirLeft
	default:
		return DirUp
	}
}

// CounterClockwise returns the direction rotated a quarter turn the other way.
func (d Direction) CounterClockwise() Direction {
	switch d {
	case DirUp:
		return DirLeft
	case DirLeft:
		return DirDown
	case DirDown:
		return DirRight
	default:
		return DirUp
	}
}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Directions lists all four cardinal directions in declaration order.
// Direction-group rules expand in this order.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// Movement is the per-object intent tag a cell slot carries during a turn.
// The zero value is Stationary.
type Movement uint8

const (
	MoveStationary Movement = iota
	MoveUp
	MoveDown
	MoveLeft
	MoveRight
	MoveAction    // pseudo-movement set by the action input, cleared by movement resolution
	MoveRandomDir // placeholder in rule replacements, resolved before it reaches a cell
)

// MovementFor returns the movement tag for a cardinal direction.
func MovementFor(d Direction) Movement {
	switch d {
	case DirUp:
		return MoveUp
	case DirDown:
		return MoveDown
	case DirLeft:
		return MoveLeft
	default:
		return MoveRight
	}
}

// Direction returns the cardinal direction of the tag, if it has one.
// Stationary, Action and RandomDir tags do not.
func (m Movement) Direction() (Direction, bool) {
	switch m {
	case MoveUp:
		return DirUp, true
	case MoveDown:
		return DirDown, true
	case MoveLeft:
		return DirLeft, true
	case MoveRight:
		return DirRight, true
	default:
		return DirUp, false
	}
}

// String returns a human-readable name for the movement tag.
func (m Movement) String() string {
	switch m {
	case MoveStationary:
		return "stationary"
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveAction:
		return "action"
	case MoveRandomDir:
		return "randomdir"
	default:
		return "unknown"
	}
}
