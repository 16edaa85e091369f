package gamedef

import "fmt"

// validateTiles rejects And combinations that put two objects on the same
// collision layer; such a tile could never occupy a cell.
func validateTiles(g *Game) error {
	for _, t := range g.Tiles {
		if t.Kind != TileAnd || len(t.Objects) < 2 {
			continue
		}
		seen := make(map[LayerID]string, len(t.Objects))
		for _, id := range t.Objects {
			obj := g.Objects[id]
			if prev, dup := seen[obj.Layer]; dup {
				return fmt.Errorf("gamedef: tile %q stacks %q and %q on layer %q", t.Name, prev, obj.Name, g.Layers[obj.Layer])
			}
			seen[obj.Layer] = obj.Name
		}
	}
	return nil
}
