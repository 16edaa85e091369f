// Package grid holds the mutable per-level state: a rectangular array of
// cells, each with one slot per collision layer. Rules rewrite it in place
// during a turn; snapshots for undo, checkpoints and change detection are
// taken with Clone and compared with Equal.
package grid

import (
	"strings"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
)

// Slot is one layer position of a cell: an optional object plus its
// movement tag for the current turn.
type Slot struct {
	Object gamedef.ObjectID
	Move   core.Movement
}

// Occupied reports whether the slot holds an object.
func (s Slot) Occupied() bool {
	return s.Object != gamedef.NoObject
}

// emptySlot is the value of a vacant slot.
var emptySlot = Slot{Object: gamedef.NoObject}

// Grid is a W×H cell array with a fixed number of layers. Slots are stored
// row-major, layers innermost.
type Grid struct {
	width  int
	height int
	layers int
	slots  []Slot
}

// New creates an empty grid.
func New(width, height, layers int) *Grid {
	g := &Grid{width: width, height: height, layers: layers}
	g.slots = make([]Slot, width*height*layers)
	for i := range g.slots {
		g.slots[i] = emptySlot
	}
	return g
}

// NewFromLevel builds the starting grid of a map level: the background
// object fills every cell first, then each map tile places its objects on
// their layers. lvl must not be a message level.
func NewFromLevel(def *gamedef.Game, lvl gamedef.Level) *Grid {
	g := New(lvl.Width, lvl.Height, def.LayerCount())

	var bg gamedef.ObjectID = gamedef.NoObject
	if def.Background != gamedef.NoTile {
		bg = def.Tiles[def.Background].Objects[0]
	}

	for y, row := range lvl.Rows {
		for x, tid := range row {
			p := core.Position{X: x, Y: y}
			if bg != gamedef.NoObject {
				g.SetSlot(p, def.Objects[bg].Layer, Slot{Object: bg})
			}
			for _, obj := range def.Tiles[tid].Objects {
				g.SetSlot(p, def.Objects[obj].Layer, Slot{Object: obj})
			}
		}
	}
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the grid height in cells.
func (g *Grid) Height() int {
	return g.height
}

// Layers returns the number of collision layers.
func (g *Grid) Layers() int {
	return g.layers
}

// InBounds reports whether the position lies on the grid.
func (g *Grid) InBounds(p core.Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *Grid) index(p core.Position, layer gamedef.LayerID) int {
	return (p.Y*g.width+p.X)*g.layers + int(layer)
}

// Slot returns the slot at the position and layer.
func (g *Grid) Slot(p core.Position, layer gamedef.LayerID) Slot {
	return g.slots[g.index(p, layer)]
}

// SetSlot overwrites the slot at the position and layer.
func (g *Grid) SetSlot(p core.Position, layer gamedef.LayerID, s Slot) {
	g.slots[g.index(p, layer)] = s
}

// Clear empties the slot at the position and layer.
func (g *Grid) Clear(p core.Position, layer gamedef.LayerID) {
	g.slots[g.index(p, layer)] = emptySlot
}

// SetMove rewrites the movement tag of an occupied slot; empty slots are
// left alone.
func (g *Grid) SetMove(p core.Position, layer gamedef.LayerID, m core.Movement) {
	i := g.index(p, layer)
	if g.slots[i].Occupied() {
		g.slots[i].Move = m
	}
}

// ClearMoves resets every movement tag to stationary. Movement resolution
// calls this once no tagged object can move any further.
func (g *Grid) ClearMoves() {
	for i := range g.slots {
		g.slots[i].Move = core.MoveStationary
	}
}

// ObjectsAt returns the objects present in the cell in layer order.
func (g *Grid) ObjectsAt(p core.Position) []gamedef.ObjectID {
	var objs []gamedef.ObjectID
	base := (p.Y*g.width + p.X) * g.layers
	for l := 0; l < g.layers; l++ {
		if s := g.slots[base+l]; s.Occupied() {
			objs = append(objs, s.Object)
		}
	}
	return objs
}

// Top returns the object on the highest occupied layer of the cell.
func (g *Grid) Top(p core.Position) (gamedef.ObjectID, bool) {
	base := (p.Y*g.width + p.X) * g.layers
	for l := g.layers - 1; l >= 0; l-- {
		if s := g.slots[base+l]; s.Occupied() {
			return s.Object, true
		}
	}
	return gamedef.NoObject, false
}

// Clone returns a deep copy sharing nothing with the receiver.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, layers: g.layers}
	c.slots = make([]Slot, len(g.slots))
	copy(c.slots, g.slots)
	return c
}

// Equal reports whether both grids hold the same objects with the same
// movement tags. A rule that only re-tags an object counts as a change.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height || g.layers != other.layers {
		return false
	}
	for i := range g.slots {
		if g.slots[i] != other.slots[i] {
			return false
		}
	}
	return true
}

// ASCII renders the grid as glyph rows, topmost object per cell, for tests
// and debug output.
func (g *Grid) ASCII(def *gamedef.Game) string {
	var sb strings.Builder
	sb.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < g.width; x++ {
			r := ' '
			if obj, ok := g.Top(core.Position{X: x, Y: y}); ok {
				if glyph := def.Objects[obj].Glyph; glyph != 0 {
					r = glyph
				}
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
