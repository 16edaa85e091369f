package gamedef

import "github.com/rulegrid/rulegrid/internal/core"

// TileMatcher constrains one tile inside a pattern cell. On the match side
// Move, when HasMove is set, must equal the slot's movement tag; on the
// replace side it is the tag to write, Stationary when absent. Random picks
// one member of an Or tile during replacement.
type TileMatcher struct {
	Tile    TileID
	Negate  bool
	Random  bool
	Move    core.Movement
	HasMove bool
}

// Pattern is one bracket: a run of cells read along the rule direction.
// With Ellipsis set the run splits into Head and Tail separated by a gap of
// any length; otherwise Head holds every cell and Tail is empty.
type Pattern struct {
	Ellipsis bool
	Head     [][]TileMatcher
	Tail     [][]TileMatcher
}

// Len returns the number of explicit cells in the pattern.
func (p Pattern) Len() int {
	return len(p.Head) + len(p.Tail)
}

// Cells returns head and tail cells in order.
func (p Pattern) Cells() [][]TileMatcher {
	if !p.Ellipsis {
		return p.Head
	}
	cells := make([][]TileMatcher, 0, len(p.Head)+len(p.Tail))
	cells = append(cells, p.Head...)
	return append(cells, p.Tail...)
}

// CommandSet carries the side effects a rule requests when it matches.
type CommandSet struct {
	Message    string
	HasMessage bool
	Again      bool
	Cancel     bool
	Checkpoint bool
	Restart    bool
	Win        bool
	Sfx        bool
}

// Empty reports whether no command is set.
func (c CommandSet) Empty() bool {
	return c == CommandSet{}
}

// Merge folds other into c. Boolean commands accumulate; the first message
// to arrive is kept.
func (c *CommandSet) Merge(other CommandSet) {
	if other.HasMessage && !c.HasMessage {
		c.Message = other.Message
		c.HasMessage = true
	}
	c.Again = c.Again || other.Again
	c.Cancel = c.Cancel || other.Cancel
	c.Checkpoint = c.Checkpoint || other.Checkpoint
	c.Restart = c.Restart || other.Restart
	c.Win = c.Win || other.Win
	c.Sfx = c.Sfx || other.Sfx
}

// Rule is one compiled rewrite rule bound to a single absolute direction.
// Rules written for a direction group (horizontal, vertical, orthogonal)
// compile into one Rule per member direction. Replace is empty for
// command-only rules.
type Rule struct {
	Direction core.Direction
	Late      bool
	Random    bool
	Match     []Pattern
	Replace   []Pattern
	Commands  CommandSet
}

// CommandOnly reports whether the rule rewrites nothing.
func (r *Rule) CommandOnly() bool {
	return len(r.Replace) == 0
}

// RuleGroup is an ordered set of rules evaluated together to a joint
// fixpoint. A random group instead applies one randomly chosen matching
// rule per pass.
type RuleGroup struct {
	Random bool
	Rules  []Rule
}

// RuleBlock is an ordered sequence of groups. A looping block sweeps its
// groups until a whole sweep changes nothing.
type RuleBlock struct {
	Loop   bool
	Groups []RuleGroup
}
