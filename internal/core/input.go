package core

// Input is one discrete player action consumed per turn.
// The zero value is Wait (a tick with no player intent).
type Input uint8

const (
	InputWait Input = iota
	InputUp
	InputDown
	InputLeft
	InputRight
	InputAction
	InputUndo
	InputRestart
	InputQuit
)

// Direction returns the movement direction of a directional input.
func (i Input) Direction() (Direction, bool) {
	switch i {
	case InputUp:
		return DirUp, true
	case InputDown:
		return DirDown, true
	case InputLeft:
		return DirLeft, true
	case InputRight:
		return DirRight, true
	default:
		return DirUp, false
	}
}

// Pressed reports whether the input is an active press (a direction or the
// action button) as opposed to wait, undo, restart or quit. Only pressed
// turns are pushed onto the undo history.
func (i Input) Pressed() bool {
	switch i {
	case InputUp, InputDown, InputLeft, InputRight, InputAction:
		return true
	default:
		return false
	}
}

// Key returns the character this input is recorded as in solution strings.
// Wait is recorded as '.'; ok is false for inputs that are never recorded.
func (i Input) Key() (r rune, ok bool) {
	switch i {
	case InputUp:
		return 'W', true
	case InputDown:
		return 'S', true
	case InputLeft:
		return 'A', true
	case InputRight:
		return 'D', true
	case InputAction:
		return 'X', true
	case InputUndo:
		return 'Z', true
	case InputRestart:
		return 'R', true
	case InputWait:
		return '.', true
	default:
		return 0, false
	}
}

// String returns a human-readable name for the input.
func (i Input) String() string {
	switch i {
	case InputWait:
		return "wait"
	case InputUp:
		return "up"
	case InputDown:
		return "down"
	case InputLeft:
		return "left"
	case InputRight:
		return "right"
	case InputAction:
		return "action"
	case InputUndo:
		return "undo"
	case InputRestart:
		return "restart"
	case InputQuit:
		return "quit"
	default:
		return "unknown"
	}
}
