package gamedef

import (
	"fmt"
	"testing"

	"github.com/rulegrid/rulegrid/internal/core"
)

// ruleGame builds a two-object definition around the given rules JSON.
func ruleGame(rules string) string {
	return fmt.Sprintf(`{
	  "layers": ["bg", "top"],
	  "objects": [
	    {"name": "a", "glyph": "a", "layer": "bg"},
	    {"name": "b", "glyph": "b", "layer": "top"}
	  ],
	  "legend": {"o": {"or": ["a", "b"]}},
	  "rules": %s,
	  "levels": [{"map": ["ab"]}]
	}`, rules)
}

func allRules(g *Game) []Rule {
	var rules []Rule
	for _, blocks := range [][]RuleBlock{g.Blocks, g.LateBlocks} {
		for _, blk := range blocks {
			for _, grp := range blk.Groups {
				rules = append(rules, grp.Rules...)
			}
		}
	}
	return rules
}

func TestExpandDirectionGroups(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		expected  []core.Direction
	}{
		{"single", "right", []core.Direction{core.DirRight}},
		{"horizontal", "horizontal", []core.Direction{core.DirLeft, core.DirRight}},
		{"vertical", "vertical", []core.Direction{core.DirUp, core.DirDown}},
		{"orthogonal", "orthogonal", []core.Direction{core.DirUp, core.DirDown, core.DirLeft, core.DirRight}},
		{"omitted", "", []core.Direction{core.DirUp, core.DirDown, core.DirLeft, core.DirRight}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Two-cell bracket keeps the rule direction-sensitive.
			g := mustLoad(t, ruleGame(fmt.Sprintf(`[[
			  {"direction": %q,
			   "match":   [{"cells": [[{"tile": "a"}], [{"tile": "b"}]]}],
			   "replace": [{"cells": [[{"tile": "b"}], [{"tile": "a"}]]}]}
			]]`, tt.direction)))

			rules := allRules(g)
			if len(rules) != len(tt.expected) {
				t.Fatalf("expected %d instances, got %d", len(tt.expected), len(rules))
			}
			for i, want := range tt.expected {
				if rules[i].Direction != want {
					t.Errorf("instance %d direction = %s, expected %s", i, rules[i].Direction, want)
				}
			}
		})
	}
}

func TestExpandInsensitiveRuleOnce(t *testing.T) {
	// Single-cell brackets with absolute movements only: one instance
	// regardless of the direction group.
	g := mustLoad(t, ruleGame(`[[
	  {"direction": "orthogonal",
	   "match":   [{"cells": [[{"tile": "a"}]]}],
	   "replace": [{"cells": [[{"tile": "a", "move": "up"}]]}]}
	]]`))

	rules := allRules(g)
	if len(rules) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(rules))
	}
	m := rules[0].Replace[0].Head[0][0]
	if !m.HasMove || m.Move != core.MoveUp {
		t.Errorf("replacement move = %+v, expected absolute up", m)
	}
}

func TestExpandRelativeMovements(t *testing.T) {
	g := mustLoad(t, ruleGame(`[[
	  {"direction": "horizontal",
	   "match":   [{"cells": [[{"tile": "a", "move": ">"}], [{"tile": "b", "move": "^"}]]}],
	   "replace": [{"cells": [[{"tile": "a", "move": "<"}], [{"tile": "b", "move": "v"}]]}]}
	]]`))

	rules := allRules(g)
	if len(rules) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(rules))
	}

	// Left instance: > is left, < is right, ^ is clockwise-from-left (down
	// is v, up stays ^... resolved per scan direction).
	left := rules[0]
	if left.Direction != core.DirLeft {
		t.Fatalf("first instance direction = %s, expected left", left.Direction)
	}
	if m := left.Match[0].Head[0][0]; m.Move != core.MoveLeft {
		t.Errorf("left instance >: got %s, expected left", m.Move)
	}
	if m := left.Replace[0].Head[0][0]; m.Move != core.MoveRight {
		t.Errorf("left instance <: got %s, expected right", m.Move)
	}
	if m := left.Match[0].Head[1][0]; m.Move != core.MoveDown {
		t.Errorf("left instance ^: got %s, expected down", m.Move)
	}
	if m := left.Replace[0].Head[1][0]; m.Move != core.MoveUp {
		t.Errorf("left instance v: got %s, expected up", m.Move)
	}

	right := rules[1]
	if right.Direction != core.DirRight {
		t.Fatalf("second instance direction = %s, expected right", right.Direction)
	}
	if m := right.Match[0].Head[0][0]; m.Move != core.MoveRight {
		t.Errorf("right instance >: got %s, expected right", m.Move)
	}
	if m := right.Match[0].Head[1][0]; m.Move != core.MoveUp {
		t.Errorf("right instance ^: got %s, expected up", m.Move)
	}
}

func TestExpandLateSplit(t *testing.T) {
	g := mustLoad(t, ruleGame(`[
	  {"rules": [
	    {"rules": [{"match": [{"cells": [[{"tile": "a"}]]}], "commands": {"sfx": true}}]},
	    {"rules": [{"late": true, "match": [{"cells": [[{"tile": "b"}]]}], "commands": {"sfx": true}}]}
	  ]}
	]`))

	if len(g.Blocks) != 1 {
		t.Errorf("expected 1 early block, got %d", len(g.Blocks))
	}
	if len(g.LateBlocks) != 1 {
		t.Errorf("expected 1 late block, got %d", len(g.LateBlocks))
	}
	if len(g.Blocks) == 1 && g.Blocks[0].Groups[0].Rules[0].Late {
		t.Error("early block carries a late rule")
	}
	if len(g.LateBlocks) == 1 && !g.LateBlocks[0].Groups[0].Rules[0].Late {
		t.Error("late block carries an early rule")
	}
}

func TestExpandEllipsis(t *testing.T) {
	g := mustLoad(t, ruleGame(`[[
	  {"direction": "right",
	   "match":   [{"ellipsis": 1, "cells": [[{"tile": "a"}], [{"tile": "b"}], [{"tile": "b"}]]}],
	   "replace": [{"ellipsis": 1, "cells": [[{"tile": "a"}], [{"tile": "b"}], [{"tile": "b"}]]}]}
	]]`))

	p := allRules(g)[0].Match[0]
	if !p.Ellipsis {
		t.Fatal("pattern should carry the ellipsis")
	}
	if len(p.Head) != 1 || len(p.Tail) != 2 {
		t.Errorf("head/tail = %d/%d, expected 1/2", len(p.Head), len(p.Tail))
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", p.Len())
	}
	if got := len(p.Cells()); got != 3 {
		t.Errorf("Cells() returned %d cells, expected 3", got)
	}
}

func TestExpandCommandOnlyRule(t *testing.T) {
	g := mustLoad(t, ruleGame(`[[
	  {"match": [{"cells": [[{"tile": "a"}]]}],
	   "commands": {"message": "found it", "again": true}}
	]]`))

	r := allRules(g)[0]
	if !r.CommandOnly() {
		t.Error("rule without replacements should be command-only")
	}
	if !r.Commands.HasMessage || r.Commands.Message != "found it" {
		t.Errorf("commands = %+v, expected the message", r.Commands)
	}
	if !r.Commands.Again {
		t.Error("again command lost in compilation")
	}
}

func TestExpandBlockForms(t *testing.T) {
	// A block object whose rules are group objects keeps group structure
	// and the loop flag.
	g := mustLoad(t, ruleGame(`[
	  {"loop": true, "rules": [
	    {"rules": [{"match": [{"cells": [[{"tile": "a"}]]}], "commands": {"sfx": true}}]},
	    {"random": true, "rules": [{"match": [{"cells": [[{"tile": "b"}]]}], "commands": {"sfx": true}}]}
	  ]}
	]`))

	if len(g.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(g.Blocks))
	}
	blk := g.Blocks[0]
	if !blk.Loop {
		t.Error("loop flag lost")
	}
	if len(blk.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(blk.Groups))
	}
	if blk.Groups[0].Random || !blk.Groups[1].Random {
		t.Errorf("random flags = %v/%v, expected false/true", blk.Groups[0].Random, blk.Groups[1].Random)
	}
}

func TestExpandSingleGroupBlock(t *testing.T) {
	g := mustLoad(t, ruleGame(`[
	  {"random": true, "rules": [
	    {"match": [{"cells": [[{"tile": "a"}]]}], "replace": [{"cells": [[{"tile": "b"}]]}]}
	  ]}
	]`))

	if len(g.Blocks) != 1 || len(g.Blocks[0].Groups) != 1 {
		t.Fatalf("expected a single block with one group, got %+v", g.Blocks)
	}
	if !g.Blocks[0].Groups[0].Random {
		t.Error("block-level random should mark the implicit group random")
	}
}

func TestExpandOrBinding(t *testing.T) {
	// An or tile written by a replacement must be matched or random.
	valid := ruleGame(`[[
	  {"direction": "right",
	   "match":   [{"cells": [[{"tile": "o"}], [{"tile": "a"}]]}],
	   "replace": [{"cells": [[{"tile": "a"}], [{"tile": "o"}]]}]}
	]]`)
	if _, err := Load([]byte(valid)); err != nil {
		t.Errorf("bound or replacement rejected: %v", err)
	}

	random := ruleGame(`[[
	  {"match":   [{"cells": [[{"tile": "a"}]]}],
	   "replace": [{"cells": [[{"tile": "o", "random": true}]]}]}
	]]`)
	if _, err := Load([]byte(random)); err != nil {
		t.Errorf("random or replacement rejected: %v", err)
	}
}

func TestExpandRejects(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{
			"unknown direction",
			`[[{"direction": "sideways", "match": [{"cells": [[{"tile": "a"}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"no match pattern",
			`[[{"replace": [{"cells": [[{"tile": "a"}]]}]}]]`,
		},
		{
			"empty bracket",
			`[[{"match": [{"cells": []}], "commands": {"sfx": true}}]]`,
		},
		{
			"unknown matcher tile",
			`[[{"match": [{"cells": [[{"tile": "zz"}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"unknown movement",
			`[[{"match": [{"cells": [[{"tile": "a", "move": "diagonal"}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"bracket count mismatch",
			`[[{"match": [{"cells": [[{"tile": "a"}]]}, {"cells": [[{"tile": "b"}]]}],
			   "replace": [{"cells": [[{"tile": "a"}]]}]}]]`,
		},
		{
			"bracket shape mismatch",
			`[[{"match": [{"cells": [[{"tile": "a"}], [{"tile": "b"}]]}],
			   "replace": [{"cells": [[{"tile": "a"}]]}]}]]`,
		},
		{
			"ellipsis shape mismatch",
			`[[{"match": [{"ellipsis": 1, "cells": [[{"tile": "a"}], [{"tile": "b"}]]}],
			   "replace": [{"cells": [[{"tile": "a"}], [{"tile": "b"}]]}]}]]`,
		},
		{
			"ellipsis out of range",
			`[[{"match": [{"ellipsis": 2, "cells": [[{"tile": "a"}], [{"tile": "b"}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"unbound or replacement",
			`[[{"match": [{"cells": [[{"tile": "a"}]]}], "replace": [{"cells": [[{"tile": "o"}]]}]}]]`,
		},
		{
			"random pick on match side",
			`[[{"match": [{"cells": [[{"tile": "o", "random": true}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"random pick on and tile",
			`[[{"match": [{"cells": [[{"tile": "a"}]]}], "replace": [{"cells": [[{"tile": "a", "random": true}]]}]}]]`,
		},
		{
			"randomdir on match side",
			`[[{"match": [{"cells": [[{"tile": "a", "move": "randomdir"}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"mixed lateness in group",
			`[[{"match": [{"cells": [[{"tile": "a"}]]}], "commands": {"sfx": true}},
			   {"late": true, "match": [{"cells": [[{"tile": "a"}]]}], "commands": {"sfx": true}}]]`,
		},
		{
			"empty block",
			`[{"loop": true, "rules": []}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(ruleGame(tt.rules))); err == nil {
				t.Error("Load accepted an invalid rule")
			}
		})
	}
}

func TestCommandSetMerge(t *testing.T) {
	var cs CommandSet
	if !cs.Empty() {
		t.Error("zero CommandSet should be empty")
	}

	cs.Merge(CommandSet{Message: "first", HasMessage: true, Sfx: true})
	cs.Merge(CommandSet{Message: "second", HasMessage: true, Again: true})

	if cs.Message != "first" {
		t.Errorf("Message = %q, the first message should win", cs.Message)
	}
	if !cs.Sfx || !cs.Again {
		t.Error("boolean commands should accumulate")
	}
	if cs.Cancel || cs.Win || cs.Checkpoint || cs.Restart {
		t.Error("unset commands appeared after merge")
	}
}
