package engine

import (
	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// resolveMovement settles every movement tag on the grid. Objects tagged
// with the action pseudo-movement or aimed off the grid settle in place;
// directionally tagged objects step into their destination cell whenever
// its slot on their layer is free. Sweeps repeat so chains (a pusher
// behind a pushed crate) unblock each other; once a sweep moves nothing,
// the remaining tags are blocked for good and are cleared.
func resolveMovement(def *gamedef.Game, g *grid.Grid) {
	for {
		progress := false
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				p := core.Position{X: x, Y: y}
				for l := 0; l < g.Layers(); l++ {
					layer := gamedef.LayerID(l)
					s := g.Slot(p, layer)
					if !s.Occupied() || s.Move == core.MoveStationary {
						continue
					}
					d, ok := s.Move.Direction()
					if !ok {
						g.SetMove(p, layer, core.MoveStationary)
						continue
					}
					dest := p.Step(d)
					if !g.InBounds(dest) {
						g.SetMove(p, layer, core.MoveStationary)
						continue
					}
					if g.Slot(dest, layer).Occupied() {
						continue
					}
					g.Clear(p, layer)
					g.SetSlot(dest, layer, grid.Slot{Object: s.Object})
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}
	g.ClearMoves()
}
