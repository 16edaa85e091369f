package engine

import (
	"errors"
	"fmt"

	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// iterationCap bounds every fixpoint loop in the engine: per-rule, per
// group sweep, per looping block and the per-turn again loop. Exceeding it
// is a fault, never silent truncation.
const iterationCap = 1000

// ErrIterationCap is the fatal fault raised when a fixpoint fails to
// settle within the iteration bound. It signals a diverging definition, so
// callers surface it instead of treating the turn as merely failed.
var ErrIterationCap = errors.New("iteration cap exceeded")

// evalBlocks runs each block of one side of the pipeline in order.
func evalBlocks(def *gamedef.Game, g *grid.Grid, blocks []gamedef.RuleBlock, rng *Rand, cmds *gamedef.CommandSet) (bool, error) {
	changed := false
	for i := range blocks {
		ch, err := evalBlock(def, g, &blocks[i], rng, cmds)
		if err != nil {
			return changed, fmt.Errorf("engine: block %d: %w", i, err)
		}
		changed = changed || ch
	}
	return changed, nil
}

// evalBlock runs a block's groups in order. A looping block sweeps its
// groups until a whole sweep changes neither the grid nor the command set.
func evalBlock(def *gamedef.Game, g *grid.Grid, blk *gamedef.RuleBlock, rng *Rand, cmds *gamedef.CommandSet) (bool, error) {
	if !blk.Loop {
		changed := false
		for gi := range blk.Groups {
			ch, err := evalGroup(def, g, &blk.Groups[gi], rng, cmds)
			if err != nil {
				return changed, fmt.Errorf("group %d: %w", gi, err)
			}
			changed = changed || ch
		}
		return changed, nil
	}

	changed := false
	for i := 0; ; i++ {
		if i >= iterationCap {
			return changed, fmt.Errorf("loop sweep: %w", ErrIterationCap)
		}
		sweep := false
		before := *cmds
		for gi := range blk.Groups {
			ch, err := evalGroup(def, g, &blk.Groups[gi], rng, cmds)
			if err != nil {
				return changed, fmt.Errorf("group %d: %w", gi, err)
			}
			sweep = sweep || ch
		}
		if !sweep && before == *cmds {
			return changed, nil
		}
		changed = changed || sweep
	}
}

// evalGroup sweeps a group's rules, each to its own local fixpoint, until
// a whole sweep changes neither the grid nor the accumulated commands.
// Random groups make a single randomly seeded probe per call instead.
func evalGroup(def *gamedef.Game, g *grid.Grid, grp *gamedef.RuleGroup, rng *Rand, cmds *gamedef.CommandSet) (bool, error) {
	if grp.Random {
		return evalRandomGroup(def, g, grp, rng, cmds), nil
	}

	changed := false
	for i := 0; ; i++ {
		if i >= iterationCap {
			return changed, fmt.Errorf("fixpoint: %w", ErrIterationCap)
		}
		sweep := false
		before := *cmds
		for ri := range grp.Rules {
			ch, err := evalRule(def, g, &grp.Rules[ri], rng, cmds)
			if err != nil {
				return changed, err
			}
			sweep = sweep || ch
		}
		if !sweep && before == *cmds {
			return changed, nil
		}
		changed = changed || sweep
	}
}

// evalRandomGroup picks a random starting rule and probes the group in
// order from there, applying the first rule that changes the grid once.
// The pick consumes the randomness context even when nothing fires.
func evalRandomGroup(def *gamedef.Game, g *grid.Grid, grp *gamedef.RuleGroup, rng *Rand, cmds *gamedef.CommandSet) bool {
	n := len(grp.Rules)
	start := rng.Intn(n)
	for k := 0; k < n; k++ {
		r := &grp.Rules[(start+k)%n]
		if applyRuleOnce(def, g, r, rng, cmds, true) {
			return true
		}
	}
	return false
}
