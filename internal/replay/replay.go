// Package replay decodes recorded solutions and verifies them against a
// game definition by driving a headless session.
package replay

import (
	"fmt"
	"strings"

	"github.com/rulegrid/rulegrid/internal/core"
)

// NoSolution is the literal recorded for a level without a known solution.
const NoSolution = "-"

// Marker cuts a solution at a checkpoint restore. Inputs past a restored
// checkpoint cannot be verified from the level start, so the recorded tail
// is informational only.
const Marker = '#'

// Decode parses a solution string into inputs. partial is true when the
// solution is the no-solution literal or was cut at a checkpoint marker;
// the returned inputs are then the verifiable prefix.
func Decode(s string) (inputs []core.Input, partial bool, err error) {
	if strings.TrimSpace(s) == NoSolution {
		return nil, true, nil
	}
	pos := 0
	for _, r := range s {
		pos++
		switch r {
		case 'w', 'W':
			inputs = append(inputs, core.InputUp)
		case 's', 'S':
			inputs = append(inputs, core.InputDown)
		case 'a', 'A':
			inputs = append(inputs, core.InputLeft)
		case 'd', 'D':
			inputs = append(inputs, core.InputRight)
		case 'x', 'X', '!', ' ':
			inputs = append(inputs, core.InputAction)
		case '.', ',':
			inputs = append(inputs, core.InputWait)
		case 'z', 'Z', 'u', 'U':
			inputs = append(inputs, core.InputUndo)
		case 'r', 'R':
			inputs = append(inputs, core.InputRestart)
		case 'q', 'Q':
			inputs = append(inputs, core.InputQuit)
		case Marker:
			return inputs, true, nil
		case '\n', '\r', '\t':
			// Recorded solutions may be wrapped for readability.
		default:
			return nil, false, fmt.Errorf("replay: input %d: unknown character %q", pos, r)
		}
	}
	return inputs, false, nil
}

// Encode renders inputs as a solution string. Inputs without a recorded
// form are dropped.
func Encode(inputs []core.Input) string {
	var sb strings.Builder
	sb.Grow(len(inputs))
	for _, in := range inputs {
		if r, ok := in.Key(); ok {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
