package engine

import (
	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// matchTile checks a single tile constraint at p, ignoring the matcher's
// negation. And tiles need every member on its layer, Or tiles at least
// one; when the matcher constrains movement every required member's tag
// must equal it. The returned object is the concrete member that satisfied
// an Or tile.
func matchTile(def *gamedef.Game, g *grid.Grid, p core.Position, m gamedef.TileMatcher) (gamedef.ObjectID, bool) {
	tile := def.Tiles[m.Tile]
	if tile.Kind == gamedef.TileOr {
		for _, obj := range tile.Objects {
			s := g.Slot(p, def.Objects[obj].Layer)
			if s.Object != obj {
				continue
			}
			if m.HasMove && s.Move != m.Move {
				continue
			}
			return obj, true
		}
		return gamedef.NoObject, false
	}

	for _, obj := range tile.Objects {
		s := g.Slot(p, def.Objects[obj].Layer)
		if s.Object != obj {
			return gamedef.NoObject, false
		}
		if m.HasMove && s.Move != m.Move {
			return gamedef.NoObject, false
		}
	}
	return gamedef.NoObject, true
}

// cellMatches reports whether every matcher of a pattern cell holds at p.
func cellMatches(def *gamedef.Game, g *grid.Grid, p core.Position, cell []gamedef.TileMatcher) bool {
	for _, m := range cell {
		if _, ok := matchTile(def, g, p, m); ok == m.Negate {
			return false
		}
	}
	return true
}

// bracketMatch locates one occurrence of a bracket: its start cell and,
// for ellipsis brackets, the gap length between head and tail.
type bracketMatch struct {
	start core.Position
	gap   int
}

// cellPos returns the grid position of explicit cell k of a matched
// bracket. Tail cells sit beyond the gap.
func cellPos(pat gamedef.Pattern, d core.Direction, bm bracketMatch, k int) core.Position {
	if k < len(pat.Head) {
		return bm.start.StepN(d, k)
	}
	return bm.start.StepN(d, len(pat.Head)+bm.gap+(k-len(pat.Head)))
}

// findMatches collects every occurrence of one bracket in scan order:
// row by row for horizontal rules, column by column for vertical ones.
// Ellipsis brackets yield one occurrence per workable gap, nearest first.
func findMatches(def *gamedef.Game, g *grid.Grid, pat gamedef.Pattern, d core.Direction) []bracketMatch {
	var matches []bracketMatch
	scan(g, d, func(p core.Position) {
		if !pat.Ellipsis {
			if bracketAt(def, g, pat.Head, d, p) {
				matches = append(matches, bracketMatch{start: p})
			}
			return
		}
		if !bracketAt(def, g, pat.Head, d, p) {
			return
		}
		tailStart := p.StepN(d, len(pat.Head))
		for gap := 0; ; gap++ {
			q := tailStart.StepN(d, gap)
			end := q.StepN(d, len(pat.Tail)-1)
			if !g.InBounds(q) || !g.InBounds(end) {
				return
			}
			if bracketAt(def, g, pat.Tail, d, q) {
				matches = append(matches, bracketMatch{start: p, gap: gap})
			}
		}
	})
	return matches
}

// bracketAt reports whether a run of cells matches starting at p.
func bracketAt(def *gamedef.Game, g *grid.Grid, cells [][]gamedef.TileMatcher, d core.Direction, p core.Position) bool {
	for k, cell := range cells {
		q := p.StepN(d, k)
		if !g.InBounds(q) || !cellMatches(def, g, q, cell) {
			return false
		}
	}
	return true
}

// scan visits every cell in the deterministic order rule matching uses:
// horizontal rules walk rows top to bottom, vertical rules walk columns
// left to right.
func scan(g *grid.Grid, d core.Direction, visit func(core.Position)) {
	if d.Horizontal() {
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				visit(core.Position{X: x, Y: y})
			}
		}
		return
	}
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			visit(core.Position{X: x, Y: y})
		}
	}
}

// recheckBracket re-verifies a located match against the current grid,
// recording which concrete object satisfied each non-negated Or tile.
// Earlier permutations may have rewritten the cells since the scan.
func recheckBracket(def *gamedef.Game, g *grid.Grid, pat gamedef.Pattern, d core.Direction, bm bracketMatch, bindings map[gamedef.TileID]gamedef.ObjectID) bool {
	for k, cell := range pat.Cells() {
		p := cellPos(pat, d, bm, k)
		if !g.InBounds(p) {
			return false
		}
		for _, m := range cell {
			obj, ok := matchTile(def, g, p, m)
			if ok == m.Negate {
				return false
			}
			if !m.Negate && def.Tiles[m.Tile].Kind == gamedef.TileOr {
				bindings[m.Tile] = obj
			}
		}
	}
	return true
}
