// Package engine executes turns of a loaded game: it matches and rewrites
// rules over the grid, resolves movement, checks win conditions and tracks
// undo history and checkpoints. A Session consumes one input per Step and
// is strictly single-threaded; callers render between turns.
package engine

import (
	"fmt"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// undoLimit bounds the undo history. When exceeded, the middle of the
// stack drains so the bottom anchor (the oldest state) survives.
const undoLimit = 100

// Status is the observable session state between turns.
type Status uint8

const (
	// StatusPlaying accepts input.
	StatusPlaying Status = iota
	// StatusComplete is reached after the last level is won.
	StatusComplete
	// StatusQuit is reached by the quit input.
	StatusQuit
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusComplete:
		return "complete"
	case StatusQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// TurnResult reports what one Step call did.
type TurnResult struct {
	Changed        bool       // the grid differs from the turn start
	Won            bool       // a level was won this turn
	CompletedLevel int        // index of the won level, -1 otherwise
	Cancelled      bool       // a cancel command or movement requirement aborted the turn
	Restarted      bool       // the grid was restored wholesale (undo or restart)
	Checkpoint     *grid.Grid // snapshot latched by a checkpoint command this turn
	Message        string     // message latched this turn, empty otherwise
	Sound          bool       // an sfx command fired
}

// Session drives one playthrough: it owns the current level, the live
// grid, the undo history, the checkpoint and the randomness context, and
// advances exactly one input per Step.
type Session struct {
	def    *gamedef.Game
	rng    *Rand
	status Status

	level      int
	g          *grid.Grid // nil on message levels
	initial    *grid.Grid // untouched starting grid of the level
	checkpoint *grid.Grid
	undo       []*grid.Grid
	turns      int

	pendingMessage string
	hasMessage     bool
}

// NewSession starts a game at the given level with a seeded randomness
// context.
func NewSession(def *gamedef.Game, startLevel int, seed int64) (*Session, error) {
	if startLevel < 0 || startLevel >= len(def.Levels) {
		return nil, fmt.Errorf("engine: level %d out of range, game has %d", startLevel, len(def.Levels))
	}
	s := &Session{def: def, rng: NewRand(seed)}
	if err := s.enterLevel(startLevel); err != nil {
		return nil, err
	}
	return s, nil
}

// Game returns the immutable definition the session runs.
func (s *Session) Game() *gamedef.Game {
	return s.def
}

// Status returns the observable session state.
func (s *Session) Status() Status {
	return s.status
}

// Level returns the current level index.
func (s *Session) Level() int {
	return s.level
}

// Turns returns the number of committed turns on the current level.
func (s *Session) Turns() int {
	return s.turns
}

// Grid returns the live grid, nil on message levels. Callers must treat it
// as read-only.
func (s *Session) Grid() *grid.Grid {
	return s.g
}

// Checkpoint returns the latched checkpoint snapshot, nil when none.
func (s *Session) Checkpoint() *grid.Grid {
	return s.checkpoint
}

// UndoDepth returns the number of grids on the undo history.
func (s *Session) UndoDepth() int {
	return len(s.undo)
}

// MessageScreen returns the text the player must currently dismiss: a
// message latched by a rule command, or the text of a message level.
func (s *Session) MessageScreen() (string, bool) {
	if s.hasMessage {
		return s.pendingMessage, true
	}
	if lvl := s.def.Levels[s.level]; lvl.IsMessage && s.status == StatusPlaying {
		return lvl.Message, true
	}
	return "", false
}

// LoadCheckpoint installs a previously saved checkpoint and resumes play
// from it. The snapshot must fit the current level.
func (s *Session) LoadCheckpoint(cp *grid.Grid) error {
	if s.g == nil {
		return fmt.Errorf("engine: checkpoint on a message level")
	}
	if cp.Width() != s.g.Width() || cp.Height() != s.g.Height() || cp.Layers() != s.g.Layers() {
		return fmt.Errorf("engine: checkpoint does not fit level %d", s.level)
	}
	s.checkpoint = cp.Clone()
	s.g = cp.Clone()
	s.undo = nil
	return nil
}

// enterLevel resets per-level state and builds the starting grid. With
// run_rules_on_level_start set, one input-less pipeline settles the grid
// before the first turn; its commands are discarded.
func (s *Session) enterLevel(i int) error {
	s.level = i
	s.undo = nil
	s.checkpoint = nil
	s.turns = 0

	lvl := s.def.Levels[i]
	if lvl.IsMessage {
		s.g = nil
		s.initial = nil
		return nil
	}
	s.g = grid.NewFromLevel(s.def, lvl)
	if s.def.Meta.RunRulesOnLevelStart {
		if _, err := s.runPipeline(); err != nil {
			return err
		}
	}
	s.initial = s.g.Clone()
	return nil
}

// Step advances one turn. The returned error is always an engine fault;
// player-level outcomes (no-op undos, cancelled turns, won levels) are
// reported in the TurnResult.
func (s *Session) Step(input core.Input) (TurnResult, error) {
	res := TurnResult{CompletedLevel: -1}
	if s.status != StatusPlaying {
		return res, nil
	}
	if input == core.InputQuit {
		s.status = StatusQuit
		return res, nil
	}

	// A latched message swallows every input except the action that
	// dismisses it.
	if s.hasMessage {
		if input == core.InputAction {
			s.hasMessage = false
			s.pendingMessage = ""
			res.Changed = true
		}
		return res, nil
	}

	if s.def.Levels[s.level].IsMessage {
		if input == core.InputAction {
			return s.winLevel(res)
		}
		return res, nil
	}

	switch input {
	case core.InputUndo:
		if s.def.Meta.NoUndo || len(s.undo) == 0 {
			return res, nil
		}
		s.g = s.undo[len(s.undo)-1]
		s.undo = s.undo[:len(s.undo)-1]
		res.Changed = true
		res.Restarted = true
		return res, nil
	case core.InputRestart:
		if s.def.Meta.NoRestart {
			return res, nil
		}
		s.restore()
		res.Changed = true
		res.Restarted = true
		return res, nil
	}

	pre := s.g.Clone()
	if d, ok := input.Direction(); ok {
		s.tagPlayers(core.MovementFor(d))
	} else if input == core.InputAction {
		s.tagPlayers(core.MoveAction)
	}

	cmds, err := s.runPipeline()
	if err != nil {
		return res, err
	}

	if cmds.Cancel {
		s.g = pre
		res.Cancelled = true
		return res, nil
	}
	if s.def.Meta.RequirePlayerMovement && input.Pressed() && samePlayerCells(s.def, pre, s.g) {
		s.g = pre
		res.Cancelled = true
		return res, nil
	}
	if cmds.Restart {
		s.restore()
		res.Changed = true
		res.Restarted = true
		return res, nil
	}

	res.Sound = cmds.Sfx
	res.Changed = !s.g.Equal(pre)

	if cmds.Checkpoint {
		s.checkpoint = s.g.Clone()
		s.undo = s.undo[:0]
		res.Checkpoint = s.checkpoint.Clone()
	}
	if cmds.HasMessage {
		s.hasMessage = true
		s.pendingMessage = cmds.Message
		res.Message = cmds.Message
	}

	if input.Pressed() && res.Changed {
		s.pushUndo(pre)
	}
	if res.Changed {
		s.turns++
	}

	if cmds.Win || checkWin(s.def, s.g) {
		return s.winLevel(res)
	}
	return res, nil
}

// runPipeline executes the turn pipeline: non-late blocks, movement
// resolution, late blocks, repeated while an again command is pending.
// The per-turn iteration cap turns a non-settling again loop into a
// fault. A cancel short-circuits before movement resolution.
func (s *Session) runPipeline() (gamedef.CommandSet, error) {
	var turn gamedef.CommandSet
	for iter := 0; ; iter++ {
		if iter >= iterationCap {
			return turn, fmt.Errorf("engine: again loop: %w", ErrIterationCap)
		}
		var cmds gamedef.CommandSet
		if _, err := evalBlocks(s.def, s.g, s.def.Blocks, s.rng, &cmds); err != nil {
			return turn, err
		}
		if cmds.Cancel {
			turn.Merge(cmds)
			return turn, nil
		}
		resolveMovement(s.def, s.g)
		if _, err := evalBlocks(s.def, s.g, s.def.LateBlocks, s.rng, &cmds); err != nil {
			return turn, err
		}
		turn.Merge(cmds)
		if cmds.Cancel || !cmds.Again {
			return turn, nil
		}
	}
}

// winLevel advances past the current level or completes the game.
func (s *Session) winLevel(res TurnResult) (TurnResult, error) {
	res.Won = true
	res.CompletedLevel = s.level
	res.Changed = true
	if s.level+1 >= len(s.def.Levels) {
		s.status = StatusComplete
		return res, nil
	}
	if err := s.enterLevel(s.level + 1); err != nil {
		return res, err
	}
	return res, nil
}

// restore rebuilds the grid from the checkpoint when one exists, else from
// the level's starting grid. The undo history stays intact so a restart
// can itself be stepped back over.
func (s *Session) restore() {
	if s.checkpoint != nil {
		s.g = s.checkpoint.Clone()
		return
	}
	s.g = s.initial.Clone()
}

// tagPlayers writes the movement intent onto every player object.
func (s *Session) tagPlayers(m core.Movement) {
	if s.def.Player == gamedef.NoTile {
		return
	}
	members := s.def.Tiles[s.def.Player].Objects
	for y := 0; y < s.g.Height(); y++ {
		for x := 0; x < s.g.Width(); x++ {
			p := core.Position{X: x, Y: y}
			for _, obj := range members {
				layer := s.def.Objects[obj].Layer
				if s.g.Slot(p, layer).Object == obj {
					s.g.SetMove(p, layer, m)
				}
			}
		}
	}
}

// pushUndo records the pre-turn grid, draining the middle of the history
// when it outgrows the bound so the bottom anchor survives.
func (s *Session) pushUndo(g *grid.Grid) {
	s.undo = append(s.undo, g)
	if len(s.undo) > undoLimit {
		s.undo = append(s.undo[:1], s.undo[undoLimit/2:]...)
	}
}

// samePlayerCells reports whether the player objects occupy the same cells
// in both grids.
func samePlayerCells(def *gamedef.Game, a, b *grid.Grid) bool {
	pa := playerCells(def, a)
	pb := playerCells(def, b)
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

func playerCells(def *gamedef.Game, g *grid.Grid) []core.Position {
	if def.Player == gamedef.NoTile {
		return nil
	}
	var cells []core.Position
	members := def.Tiles[def.Player].Objects
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := core.Position{X: x, Y: y}
			for _, obj := range members {
				if g.Slot(p, def.Objects[obj].Layer).Object == obj {
					cells = append(cells, p)
					break
				}
			}
		}
	}
	return cells
}
