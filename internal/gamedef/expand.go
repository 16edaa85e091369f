package gamedef

import (
	"fmt"

	"github.com/rulegrid/rulegrid/internal/core"
)

// compileGroup expands every rule of one group. All rules of a group must
// agree on lateness so the whole group can run on one side of movement
// resolution.
func (b *builder) compileGroup(fg fileGroup) (RuleGroup, bool, error) {
	if len(fg.Rules) == 0 {
		return RuleGroup{}, false, fmt.Errorf("empty group")
	}
	late := fg.Rules[0].Late
	group := RuleGroup{Random: fg.Random}
	for i, fr := range fg.Rules {
		if fr.Late != late {
			return RuleGroup{}, false, fmt.Errorf("rule %d mixes late and non-late rules in one group", i)
		}
		instances, err := b.compileRule(fr)
		if err != nil {
			return RuleGroup{}, false, fmt.Errorf("rule %d: %w", i, err)
		}
		group.Rules = append(group.Rules, instances...)
	}
	return group, late, nil
}

// compileRule expands a rule into one instance per absolute direction of
// its direction group, resolving relative movement markers per instance.
// Rules whose meaning does not depend on the scan direction compile to a
// single instance.
func (b *builder) compileRule(fr fileRule) ([]Rule, error) {
	if len(fr.Match) == 0 {
		return nil, fmt.Errorf("no match pattern")
	}
	dirs, err := ruleDirections(fr.Direction)
	if err != nil {
		return nil, err
	}
	if len(dirs) > 1 && !directionSensitive(fr) {
		dirs = dirs[:1]
	}

	commands := compileCommands(fr.Commands)
	rules := make([]Rule, 0, len(dirs))
	for _, d := range dirs {
		r := Rule{Direction: d, Late: fr.Late, Random: fr.Random, Commands: commands}
		if r.Match, err = b.compileBrackets(fr.Match, d, false); err != nil {
			return nil, err
		}
		if r.Replace, err = b.compileBrackets(fr.Replace, d, true); err != nil {
			return nil, err
		}
		if err := b.checkRuleShape(&r); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func ruleDirections(name string) ([]core.Direction, error) {
	switch name {
	case "up":
		return []core.Direction{core.DirUp}, nil
	case "down":
		return []core.Direction{core.DirDown}, nil
	case "left":
		return []core.Direction{core.DirLeft}, nil
	case "right":
		return []core.Direction{core.DirRight}, nil
	case "horizontal":
		return []core.Direction{core.DirLeft, core.DirRight}, nil
	case "vertical":
		return []core.Direction{core.DirUp, core.DirDown}, nil
	case "", "orthogonal":
		return core.Directions[:], nil
	default:
		return nil, fmt.Errorf("unknown direction %q", name)
	}
}

// directionSensitive reports whether the rule's meaning depends on its scan
// direction: multi-cell brackets, an ellipsis, or relative movements.
func directionSensitive(fr fileRule) bool {
	sensitive := func(brackets []fileBracket) bool {
		for _, br := range brackets {
			if len(br.Cells) > 1 || br.Ellipsis != nil {
				return true
			}
			for _, cell := range br.Cells {
				for _, m := range cell {
					switch m.Move {
					case ">", "<", "^", "v":
						return true
					}
				}
			}
		}
		return false
	}
	return sensitive(fr.Match) || sensitive(fr.Replace)
}

func (b *builder) compileBrackets(brackets []fileBracket, d core.Direction, replace bool) ([]Pattern, error) {
	if len(brackets) == 0 {
		return nil, nil
	}
	out := make([]Pattern, 0, len(brackets))
	for i, br := range brackets {
		p, err := b.compileBracket(br, d, replace)
		if err != nil {
			return nil, fmt.Errorf("bracket %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *builder) compileBracket(br fileBracket, d core.Direction, replace bool) (Pattern, error) {
	if len(br.Cells) == 0 {
		return Pattern{}, fmt.Errorf("empty bracket")
	}
	cells := make([][]TileMatcher, 0, len(br.Cells))
	for _, fc := range br.Cells {
		cell := make([]TileMatcher, 0, len(fc))
		for _, fm := range fc {
			m, err := b.compileMatcher(fm, d, replace)
			if err != nil {
				return Pattern{}, err
			}
			cell = append(cell, m)
		}
		cells = append(cells, cell)
	}
	p := Pattern{Head: cells}
	if br.Ellipsis != nil {
		n := *br.Ellipsis
		if n < 1 || n >= len(cells) {
			return Pattern{}, fmt.Errorf("ellipsis after cell %d needs cells on both sides of %d", n, len(cells))
		}
		p.Ellipsis = true
		p.Head = cells[:n]
		p.Tail = cells[n:]
	}
	return p, nil
}

func (b *builder) compileMatcher(fm fileMatcher, d core.Direction, replace bool) (TileMatcher, error) {
	tid, ok := b.game.tilesByName[fm.Tile]
	if !ok {
		return TileMatcher{}, fmt.Errorf("unknown tile %q", fm.Tile)
	}
	m := TileMatcher{Tile: tid, Negate: fm.Negate, Random: fm.Random}
	if fm.Random {
		if !replace {
			return TileMatcher{}, fmt.Errorf("tile %q: random pick is only valid in replacements", fm.Tile)
		}
		if b.game.Tiles[tid].Kind != TileOr {
			return TileMatcher{}, fmt.Errorf("tile %q: random pick needs an or tile", fm.Tile)
		}
	}
	if fm.Move != "" {
		mv, err := resolveMove(fm.Move, d)
		if err != nil {
			return TileMatcher{}, fmt.Errorf("tile %q: %w", fm.Tile, err)
		}
		if mv == core.MoveRandomDir && !replace {
			return TileMatcher{}, fmt.Errorf("tile %q: randomdir is only valid in replacements", fm.Tile)
		}
		m.Move = mv
		m.HasMove = true
	}
	return m, nil
}

// resolveMove maps a movement spec to an absolute tag. The relative forms
// follow the rule's scan direction: > is forward, < is backward, ^ turns
// counterclockwise and v clockwise.
func resolveMove(spec string, d core.Direction) (core.Movement, error) {
	switch spec {
	case "up":
		return core.MoveUp, nil
	case "down":
		return core.MoveDown, nil
	case "left":
		return core.MoveLeft, nil
	case "right":
		return core.MoveRight, nil
	case "stationary":
		return core.MoveStationary, nil
	case "action":
		return core.MoveAction, nil
	case "randomdir":
		return core.MoveRandomDir, nil
	case ">":
		return core.MovementFor(d), nil
	case "<":
		return core.MovementFor(d.Opposite()), nil
	case "^":
		return core.MovementFor(d.CounterClockwise()), nil
	case "v":
		return core.MovementFor(d.Clockwise()), nil
	default:
		return core.MoveStationary, fmt.Errorf("unknown movement %q", spec)
	}
}

func compileCommands(fc fileCommands) CommandSet {
	cs := CommandSet{
		Again:      fc.Again,
		Cancel:     fc.Cancel,
		Checkpoint: fc.Checkpoint,
		Restart:    fc.Restart,
		Win:        fc.Win,
		Sfx:        fc.Sfx,
	}
	if fc.Message != nil {
		cs.Message = *fc.Message
		cs.HasMessage = true
	}
	return cs
}

// checkRuleShape verifies replacement brackets line up cell for cell with
// their match brackets and that every Or tile written by a replacement can
// be resolved, either through a match-side binding or a random pick.
func (b *builder) checkRuleShape(r *Rule) error {
	if len(r.Replace) == 0 {
		return nil
	}
	if len(r.Replace) != len(r.Match) {
		return fmt.Errorf("%d replacement brackets for %d match brackets", len(r.Replace), len(r.Match))
	}
	for i := range r.Replace {
		m, rp := r.Match[i], r.Replace[i]
		if m.Ellipsis != rp.Ellipsis || len(m.Head) != len(rp.Head) || len(m.Tail) != len(rp.Tail) {
			return fmt.Errorf("replacement bracket %d does not line up with its match bracket", i)
		}
	}

	bound := make(map[TileID]bool)
	for _, p := range r.Match {
		for _, cell := range p.Cells() {
			for _, m := range cell {
				if !m.Negate && b.game.Tiles[m.Tile].Kind == TileOr {
					bound[m.Tile] = true
				}
			}
		}
	}
	for _, p := range r.Replace {
		for _, cell := range p.Cells() {
			for _, m := range cell {
				if m.Negate || m.Random {
					continue
				}
				if b.game.Tiles[m.Tile].Kind == TileOr && !bound[m.Tile] {
					return fmt.Errorf("replacement or tile %q is neither matched nor random", b.game.Tiles[m.Tile].Name)
				}
			}
		}
	}
	return nil
}
