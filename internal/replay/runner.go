package replay

import (
	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/gamedef"
)

// Verdict is the outcome of verifying one solution.
type Verdict uint8

const (
	// VerdictSolved means the inputs completed the level.
	VerdictSolved Verdict = iota
	// VerdictFailed means the inputs ran out, or quit, without solving.
	VerdictFailed
	// VerdictSkipped means the solution cannot be verified: it is absent
	// or relies on a restored checkpoint.
	VerdictSkipped
)

// String returns the verdict's storage name.
func (v Verdict) String() string {
	switch v {
	case VerdictSolved:
		return "SOLVED"
	case VerdictFailed:
		return "FAILED"
	case VerdictSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Report describes one verification run.
type Report struct {
	Verdict Verdict
	Level   int
	Inputs  int    // inputs consumed before the run ended
	Turns   int    // turns that changed the grid
	Reason  string // human-readable cause for failed and skipped runs
}

// Run verifies a recorded solution against one level of a game. The
// returned error is an engine fault or a malformed solution; an ordinary
// unsolved ending is reported in the verdict instead.
func Run(def *gamedef.Game, level int, solution string, seed int64) (Report, error) {
	rep := Report{Level: level}

	inputs, partial, err := Decode(solution)
	if err != nil {
		return rep, err
	}
	if partial && len(inputs) == 0 {
		rep.Verdict = VerdictSkipped
		rep.Reason = "no recorded solution"
		return rep, nil
	}

	s, err := engine.NewSession(def, level, seed)
	if err != nil {
		return rep, err
	}

	for _, in := range inputs {
		res, err := s.Step(in)
		if err != nil {
			return rep, err
		}
		rep.Inputs++
		if res.Changed {
			rep.Turns++
		}
		if res.Won && res.CompletedLevel == level {
			rep.Verdict = VerdictSolved
			return rep, nil
		}
		if s.Status() == engine.StatusQuit {
			rep.Verdict = VerdictFailed
			rep.Reason = "solution quits before solving"
			return rep, nil
		}
	}

	if partial {
		rep.Verdict = VerdictSkipped
		rep.Reason = "solution resumes from a checkpoint"
		return rep, nil
	}
	rep.Verdict = VerdictFailed
	rep.Reason = "inputs exhausted without solving"
	return rep, nil
}
