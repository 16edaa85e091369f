package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// rewriteTemplate splices a rules list and a map row into a small game,
// giving rewrite tests a one-row sandbox.
const rewriteTemplate = `{
  "title": "Sandbox",
  "layers": ["floor", "things"],
  "objects": [
    {"name": "ground", "glyph": ".", "layer": "floor"},
    {"name": "a",      "glyph": "a", "layer": "things"},
    {"name": "b",      "glyph": "b", "layer": "things"},
    {"name": "pad",    "glyph": "o", "layer": "floor"}
  ],
  "legend": {"g": {"or": ["a", "b"]}},
  "background": "ground",
  "rules": [%s],
  "levels": [{"map": [%q]}]
}`

func rewriteSetup(t *testing.T, rules, row string) (*gamedef.Game, *grid.Grid) {
	def := loadGame(t, fmt.Sprintf(rewriteTemplate, rules, row))
	return def, grid.NewFromLevel(def, def.Levels[0])
}

func evalFirstRule(t *testing.T, def *gamedef.Game, g *grid.Grid, seed int64) (bool, gamedef.CommandSet) {
	var cmds gamedef.CommandSet
	changed, err := evalRule(def, g, &def.Blocks[0].Groups[0].Rules[0], NewRand(seed), &cmds)
	if err != nil {
		t.Fatalf("evalRule: %v", err)
	}
	return changed, cmds
}

func TestRewriteFixpointIdempotent(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"match":   [{"cells": [[{"tile": "a"}]]}],
		"replace": [{"cells": [[{"tile": "b"}]]}]
	}]`, "aaa")

	changed, _ := evalFirstRule(t, def, g, 1)
	if !changed {
		t.Fatal("rule reported no change")
	}
	if got := g.ASCII(def); got != "bbb" {
		t.Fatalf("grid = %q, expected %q", got, "bbb")
	}

	changed, _ = evalFirstRule(t, def, g, 1)
	if changed {
		t.Error("settled grid changed on a second evaluation")
	}
	if got := g.ASCII(def); got != "bbb" {
		t.Errorf("second evaluation disturbed the grid: %q", got)
	}
}

func TestRewriteSimultaneousMatches(t *testing.T) {
	// Both aa pairs are located up front; applying the first leaves the
	// second stale, so exactly one pair converts.
	def, g := rewriteSetup(t, `[{
		"direction": "right",
		"match":   [{"cells": [[{"tile": "a"}], [{"tile": "a"}]]}],
		"replace": [{"cells": [[{"tile": "b"}], [{"tile": "b"}]]}]
	}]`, "aaa")

	evalFirstRule(t, def, g, 1)
	if got := g.ASCII(def); got != "bba" {
		t.Errorf("grid = %q, expected %q", got, "bba")
	}
}

func TestRewriteEllipsisAppliesPerGap(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"direction": "right",
		"match":   [{"cells": [[{"tile": "b"}], [{"tile": "a"}]], "ellipsis": 1}],
		"replace": [{"cells": [[{"tile": "b"}], [{"tile": "b"}]], "ellipsis": 1}]
	}]`, "b.a.a")

	evalFirstRule(t, def, g, 1)
	if got := g.ASCII(def); got != "b.b.b" {
		t.Errorf("grid = %q, expected %q", got, "b.b.b")
	}
}

func TestRewriteMultiBracket(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"match":   [{"cells": [[{"tile": "a"}]]}, {"cells": [[{"tile": "pad"}, {"tile": "a", "negate": true}]]}],
		"replace": [{"cells": [[{"tile": "a", "negate": true}]]}, {"cells": [[{"tile": "pad"}, {"tile": "a"}]]}]
	}]`, "a.o")

	evalFirstRule(t, def, g, 1)
	if got := g.ASCII(def); got != "..a" {
		t.Errorf("grid = %q, expected the a teleported onto the pad: %q", got, "..a")
	}
}

func TestRewriteCommandOnly(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"match":    [{"cells": [[{"tile": "a"}]]}],
		"commands": {"sfx": true, "message": "ping"}
	}]`, "a..")

	changed, cmds := evalFirstRule(t, def, g, 1)
	if changed {
		t.Error("command-only rule reported a grid change")
	}
	if !cmds.Sfx || cmds.Message != "ping" {
		t.Errorf("commands = %+v, expected sfx and message", cmds)
	}
	if got := g.ASCII(def); got != "a.." {
		t.Errorf("grid = %q, expected untouched", got)
	}
}

func TestRewriteOrBindingRetags(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"match":   [{"cells": [[{"tile": "g"}]]}],
		"replace": [{"cells": [[{"tile": "g", "move": "up"}]]}]
	}]`, "ab")

	evalFirstRule(t, def, g, 1)
	if got := g.ASCII(def); got != "ab" {
		t.Fatalf("grid = %q, retagging must not swap objects", got)
	}
	aObj, _ := def.ObjectByName("a")
	layer := def.Objects[aObj].Layer
	for x := 0; x < 2; x++ {
		s := g.Slot(core.Position{X: x, Y: 0}, layer)
		if s.Move != core.MoveUp {
			t.Errorf("cell %d move = %v, expected up", x, s.Move)
		}
	}
}

func TestRewriteRandomPickDeterministic(t *testing.T) {
	rules := `[{
		"match":   [{"cells": [[{"tile": "a"}]]}],
		"replace": [{"cells": [[{"tile": "g", "random": true}]]}]
	}]`
	def, g1 := rewriteSetup(t, rules, "aaaa")
	_, g2 := rewriteSetup(t, rules, "aaaa")

	evalFirstRule(t, def, g1, 9)
	evalFirstRule(t, def, g2, 9)
	if !g1.Equal(g2) {
		t.Error("equal seeds picked different or members")
	}
	aObj, _ := def.ObjectByName("a")
	layer := def.Objects[aObj].Layer
	for x := 0; x < 4; x++ {
		if !g1.Slot(core.Position{X: x, Y: 0}, layer).Occupied() {
			t.Errorf("cell %d lost its object", x)
		}
	}
}

func TestRewriteRandomRuleAppliesOnce(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"random":  true,
		"match":   [{"cells": [[{"tile": "a"}]]}],
		"replace": [{"cells": [[{"tile": "b"}]]}]
	}]`, "aaa")

	evalFirstRule(t, def, g, 1)
	if got := g.ASCII(def); got != "baa" {
		t.Errorf("grid = %q, expected a single conversion", got)
	}
}

func TestRewriteNegatedReplaceRemoves(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"direction": "right",
		"match":   [{"cells": [[{"tile": "a"}], [{"tile": "b"}]]}],
		"replace": [{"cells": [[{"tile": "a"}], [{"tile": "b", "negate": true}]]}]
	}]`, "ab")

	evalFirstRule(t, def, g, 1)
	if got := g.ASCII(def); got != "a." {
		t.Errorf("grid = %q, expected the b removed", got)
	}
}

func TestRewriteOscillationFaults(t *testing.T) {
	def, g := rewriteSetup(t, `[
		{"match": [{"cells": [[{"tile": "a"}]]}], "replace": [{"cells": [[{"tile": "b"}]]}]},
		{"match": [{"cells": [[{"tile": "b"}]]}], "replace": [{"cells": [[{"tile": "a"}]]}]}
	]`, "a..")

	var cmds gamedef.CommandSet
	_, err := evalBlocks(def, g, def.Blocks, NewRand(1), &cmds)
	if !errors.Is(err, ErrIterationCap) {
		t.Fatalf("evalBlocks = %v, expected the iteration cap fault", err)
	}
}

func TestRandomGroupConsumesRoll(t *testing.T) {
	def, g := rewriteSetup(t, `[{
		"random": true,
		"rules": [
			{"match": [{"cells": [[{"tile": "a"}]]}], "replace": [{"cells": [[{"tile": "b"}]]}]},
			{"match": [{"cells": [[{"tile": "b"}]]}], "replace": [{"cells": [[{"tile": "a"}]]}]}
		]
	}]`, "a..")

	rng := NewRand(3)
	var cmds gamedef.CommandSet
	grp := &def.Blocks[0].Groups[0]
	if !grp.Random {
		t.Fatal("group did not compile as random")
	}

	// Whatever rule the roll lands on, the probe walks on to the one
	// that fires, exactly once per pass.
	if fired := evalRandomGroup(def, g, grp, rng, &cmds); !fired {
		t.Fatal("random group probe did not fire")
	}
	if got := g.ASCII(def); got != "b.." {
		t.Errorf("grid = %q after one probe, expected %q", got, "b..")
	}
	if fired := evalRandomGroup(def, g, grp, rng, &cmds); !fired {
		t.Fatal("second probe did not fire")
	}
	if got := g.ASCII(def); got != "a.." {
		t.Errorf("grid = %q after two probes, expected %q", got, "a..")
	}
}
