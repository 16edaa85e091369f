package engine

import (
	"fmt"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// evalRule runs one rule to its local fixpoint: scan, apply every
// permutation, rescan, until a pass changes nothing. Commands merge into
// cmds whenever the rule matches, including for command-only rules. Rules
// with once semantics stop after their first changing permutation and are
// not driven to a fixpoint.
func evalRule(def *gamedef.Game, g *grid.Grid, r *gamedef.Rule, rng *Rand, cmds *gamedef.CommandSet) (bool, error) {
	changed := false
	for i := 0; ; i++ {
		if i >= iterationCap {
			return changed, fmt.Errorf("rule fixpoint: %w", ErrIterationCap)
		}
		if !applyRuleOnce(def, g, r, rng, cmds, r.Random) {
			return changed, nil
		}
		changed = true
		if r.Random {
			return true, nil
		}
	}
}

// applyRuleOnce performs one scan-and-apply pass of a rule, reporting
// whether the grid changed. Every bracket must match somewhere or the rule
// does not fire. Permutations of per-bracket matches apply in
// first-bracket-fastest order; each is re-verified against the current
// grid before it is applied, binding Or tiles to the concrete objects
// found. With once set the pass stops after the first changing
// permutation.
func applyRuleOnce(def *gamedef.Game, g *grid.Grid, r *gamedef.Rule, rng *Rand, cmds *gamedef.CommandSet, once bool) bool {
	matches := make([][]bracketMatch, len(r.Match))
	for bi, pat := range r.Match {
		found := findMatches(def, g, pat, r.Direction)
		if len(found) == 0 {
			return false
		}
		matches[bi] = found
	}

	cmds.Merge(r.Commands)
	if r.CommandOnly() {
		return false
	}

	changed := false
	perm := make([]int, len(matches))
	for {
		if applyPermutation(def, g, r, rng, pickMatches(matches, perm)) {
			changed = true
			if once {
				return true
			}
		}
		if !nextPermutation(perm, matches) {
			return changed
		}
	}
}

// pickMatches maps permutation indices to the selected match per bracket.
func pickMatches(matches [][]bracketMatch, perm []int) []bracketMatch {
	picked := make([]bracketMatch, len(perm))
	for i, idx := range perm {
		picked[i] = matches[i][idx]
	}
	return picked
}

// nextPermutation advances the index vector first-bracket-fastest,
// reporting false once every combination has been visited.
func nextPermutation(perm []int, matches [][]bracketMatch) bool {
	for i := 0; i < len(perm); i++ {
		perm[i]++
		if perm[i] < len(matches[i]) {
			return true
		}
		perm[i] = 0
	}
	return false
}

// applyPermutation re-verifies every bracket of one permutation, then
// applies each bracket's replacement. A bracket is verified once more
// right before its own application since earlier brackets may have
// rewritten shared cells.
func applyPermutation(def *gamedef.Game, g *grid.Grid, r *gamedef.Rule, rng *Rand, picked []bracketMatch) bool {
	bindings := make(map[gamedef.TileID]gamedef.ObjectID)
	for bi, pat := range r.Match {
		if !recheckBracket(def, g, pat, r.Direction, picked[bi], bindings) {
			return false
		}
	}

	changed := false
	for bi := range r.Match {
		if !recheckBracket(def, g, r.Match[bi], r.Direction, picked[bi], bindings) {
			continue
		}
		if applyBracket(def, g, r.Match[bi], r.Replace[bi], r.Direction, picked[bi], bindings, rng) {
			changed = true
		}
	}
	return changed
}

// applyBracket rewrites the cells of one matched bracket. Per cell: tiles
// named only on the match side are removed, tiles named only on the
// replace side are added, tiles named on both sides keep their object and
// take the replace side's movement tag, and a negated replace tile
// removes. Or tiles resolve through the permutation's bindings or, when
// marked random, through the randomness context.
func applyBracket(def *gamedef.Game, g *grid.Grid, match, replace gamedef.Pattern, d core.Direction, bm bracketMatch, bindings map[gamedef.TileID]gamedef.ObjectID, rng *Rand) bool {
	changed := false
	matchCells := match.Cells()
	replaceCells := replace.Cells()

	for k := range matchCells {
		p := cellPos(match, d, bm, k)

		kept := make(map[gamedef.TileID]bool)
		for _, m := range replaceCells[k] {
			if !m.Negate {
				kept[m.Tile] = true
			}
		}

		for _, m := range matchCells[k] {
			if m.Negate || kept[m.Tile] {
				continue
			}
			if removeTile(def, g, p, m.Tile, bindings) {
				changed = true
			}
		}

		for _, m := range replaceCells[k] {
			if m.Negate {
				if removeTile(def, g, p, m.Tile, bindings) {
					changed = true
				}
				continue
			}
			if writeTile(def, g, p, m, bindings, rng) {
				changed = true
			}
		}
	}
	return changed
}

// removeTile clears the tile's objects from the cell. An Or tile removes
// its bound object when one is recorded, otherwise every present member.
func removeTile(def *gamedef.Game, g *grid.Grid, p core.Position, tid gamedef.TileID, bindings map[gamedef.TileID]gamedef.ObjectID) bool {
	tile := def.Tiles[tid]
	objects := tile.Objects
	if tile.Kind == gamedef.TileOr {
		if obj, ok := bindings[tid]; ok {
			objects = []gamedef.ObjectID{obj}
		}
	}
	changed := false
	for _, obj := range objects {
		layer := def.Objects[obj].Layer
		if g.Slot(p, layer).Object == obj {
			g.Clear(p, layer)
			changed = true
		}
	}
	return changed
}

// writeTile places the matcher's objects into the cell with the movement
// tag it dictates, replacing same-layer occupants.
func writeTile(def *gamedef.Game, g *grid.Grid, p core.Position, m gamedef.TileMatcher, bindings map[gamedef.TileID]gamedef.ObjectID, rng *Rand) bool {
	tile := def.Tiles[m.Tile]
	objects := tile.Objects
	if tile.Kind == gamedef.TileOr {
		switch {
		case m.Random:
			objects = []gamedef.ObjectID{tile.Objects[rng.Intn(len(tile.Objects))]}
		default:
			// Load-time validation guarantees a binding exists.
			objects = []gamedef.ObjectID{bindings[m.Tile]}
		}
	}

	move := core.MoveStationary
	if m.HasMove {
		move = m.Move
	}
	if move == core.MoveRandomDir {
		move = core.MovementFor(rng.Direction())
	}

	changed := false
	for _, obj := range objects {
		layer := def.Objects[obj].Layer
		next := grid.Slot{Object: obj, Move: move}
		if g.Slot(p, layer) != next {
			g.SetSlot(p, layer, next)
			changed = true
		}
	}
	return changed
}
