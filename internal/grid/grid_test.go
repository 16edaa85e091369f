package grid

import (
	"testing"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
)

const miniJSON = `{
  "layers": ["background", "pushables"],
  "objects": [
    {"name": "floor",  "glyph": ".", "layer": "background"},
    {"name": "wall",   "glyph": "#", "layer": "pushables"},
    {"name": "player", "glyph": "P", "layer": "pushables"}
  ],
  "player": "player",
  "background": "floor",
  "levels": [{"map": ["###", "#P#", "###"]}]
}`

func miniGame(t *testing.T) *gamedef.Game {
	def, err := gamedef.Load([]byte(miniJSON))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return def
}

func TestNewFromLevel(t *testing.T) {
	def := miniGame(t)
	g := NewFromLevel(def, def.Levels[0])

	if g.Width() != 3 || g.Height() != 3 {
		t.Errorf("grid is %dx%d, expected 3x3", g.Width(), g.Height())
	}
	if g.Layers() != 2 {
		t.Errorf("Layers() = %d, expected 2", g.Layers())
	}

	want := "###\n#P#\n###"
	if got := g.ASCII(def); got != want {
		t.Errorf("ASCII() = %q, expected %q", got, want)
	}

	// The background object backs every cell, including walls.
	floor, _ := def.ObjectByName("floor")
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			s := g.Slot(core.Position{X: x, Y: y}, def.Objects[floor].Layer)
			if s.Object != floor {
				t.Errorf("cell (%d,%d) missing background fill", x, y)
			}
		}
	}
}

func TestSlotRoundTrip(t *testing.T) {
	def := miniGame(t)
	g := NewFromLevel(def, def.Levels[0])
	player, _ := def.ObjectByName("player")
	layer := def.Objects[player].Layer
	p := core.Position{X: 1, Y: 1}

	s := g.Slot(p, layer)
	if s.Object != player {
		t.Fatalf("slot at %s = %v, expected the player", p, s.Object)
	}
	if s.Move != core.MoveStationary {
		t.Errorf("fresh slot move = %s, expected stationary", s.Move)
	}

	g.SetMove(p, layer, core.MoveRight)
	if got := g.Slot(p, layer).Move; got != core.MoveRight {
		t.Errorf("after SetMove, move = %s, expected right", got)
	}

	g.Clear(p, layer)
	if g.Slot(p, layer).Occupied() {
		t.Error("slot still occupied after Clear")
	}
}

func TestSetMoveSkipsEmptySlots(t *testing.T) {
	def := miniGame(t)
	g := New(2, 1, def.LayerCount())
	p := core.Position{X: 0, Y: 0}

	g.SetMove(p, 1, core.MoveLeft)
	if s := g.Slot(p, 1); s.Occupied() || s.Move != core.MoveStationary {
		t.Errorf("SetMove on an empty slot changed it: %+v", s)
	}
}

func TestClearMoves(t *testing.T) {
	def := miniGame(t)
	g := NewFromLevel(def, def.Levels[0])
	player, _ := def.ObjectByName("player")
	layer := def.Objects[player].Layer
	p := core.Position{X: 1, Y: 1}

	g.SetMove(p, layer, core.MoveUp)
	g.ClearMoves()
	if got := g.Slot(p, layer).Move; got != core.MoveStationary {
		t.Errorf("after ClearMoves, move = %s, expected stationary", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	def := miniGame(t)
	g := NewFromLevel(def, def.Levels[0])
	c := g.Clone()

	if !g.Equal(c) {
		t.Fatal("clone should equal its source")
	}

	player, _ := def.ObjectByName("player")
	layer := def.Objects[player].Layer
	g.Clear(core.Position{X: 1, Y: 1}, layer)

	if g.Equal(c) {
		t.Error("mutating the source should not affect the clone")
	}
	if s := c.Slot(core.Position{X: 1, Y: 1}, layer); s.Object != player {
		t.Error("clone lost the player")
	}
}

func TestEqualSeesMovementTags(t *testing.T) {
	def := miniGame(t)
	g := NewFromLevel(def, def.Levels[0])
	c := g.Clone()

	player, _ := def.ObjectByName("player")
	layer := def.Objects[player].Layer
	c.SetMove(core.Position{X: 1, Y: 1}, layer, core.MoveDown)

	if g.Equal(c) {
		t.Error("grids differing only in movement tags must not compare equal")
	}
}

func TestEqualDimensionMismatch(t *testing.T) {
	a := New(2, 2, 1)
	b := New(2, 3, 1)
	if a.Equal(b) {
		t.Error("grids of different sizes compared equal")
	}
	if a.Equal(nil) {
		t.Error("grid compared equal to nil")
	}
}

func TestTopAndObjectsAt(t *testing.T) {
	def := miniGame(t)
	g := NewFromLevel(def, def.Levels[0])
	p := core.Position{X: 1, Y: 1}

	player, _ := def.ObjectByName("player")
	floor, _ := def.ObjectByName("floor")

	top, ok := g.Top(p)
	if !ok || top != player {
		t.Errorf("Top = %v/%v, expected the player on the upper layer", top, ok)
	}

	objs := g.ObjectsAt(p)
	if len(objs) != 2 || objs[0] != floor || objs[1] != player {
		t.Errorf("ObjectsAt = %v, expected [floor player]", objs)
	}

	empty := New(1, 1, 2)
	if _, ok := empty.Top(core.Position{}); ok {
		t.Error("Top of an empty cell reported an object")
	}
}
