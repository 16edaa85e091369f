package engine

import (
	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// checkWin evaluates the win conditions in order against the settled grid.
// The first satisfied condition completes the level; a game without win
// conditions never auto-completes and relies on the win command.
func checkWin(def *gamedef.Game, g *grid.Grid) bool {
	for _, wc := range def.WinConds {
		if winConditionHolds(def, g, wc) {
			return true
		}
	}
	return false
}

func winConditionHolds(def *gamedef.Game, g *grid.Grid, wc gamedef.WinCondition) bool {
	// No X: zero cells match X. Some X: at least one. With On Y both
	// tiles must share the cell. All X on Y: every X cell is also a Y
	// cell, vacuously true without any X.
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := core.Position{X: x, Y: y}
			_, has := matchTile(def, g, p, gamedef.TileMatcher{Tile: wc.Tile})
			if !has {
				continue
			}
			on := true
			if wc.On != gamedef.NoTile {
				_, on = matchTile(def, g, p, gamedef.TileMatcher{Tile: wc.On})
			}
			switch wc.Qualifier {
			case gamedef.QualifierNo:
				if on {
					return false
				}
			case gamedef.QualifierSome:
				if on {
					return true
				}
			case gamedef.QualifierAll:
				if !on {
					return false
				}
			}
		}
	}
	return wc.Qualifier != gamedef.QualifierSome
}
