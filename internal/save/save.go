// Package save persists an in-progress playthrough: the level reached, the
// solution recorded for each level and the latched checkpoint, if any.
// Solutions replayed under the original seed reconstruct a session exactly;
// a solution cut by a checkpoint marker is unverifiable from the level
// start and resumes from the snapshot instead.
package save

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/grid"
)

// Version is the save format written by this build.
const Version = 1

// State is the serialized form of a playthrough. Inputs holds one recorded
// solution per level index; entries for unplayed levels are empty.
type State struct {
	Version    int       `json:"version"`
	Level      int       `json:"level"`
	Inputs     []string  `json:"inputs"`
	Checkpoint *Snapshot `json:"checkpoint,omitempty"`
}

// Snapshot is a serialized grid: object names per cell, row-major, each
// cell listing its objects from the bottom layer up.
type Snapshot struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  [][]string `json:"cells"`
}

// New returns an empty state at the first level.
func New() *State {
	return &State{Version: Version}
}

// Solution returns the recorded solution for a level, empty when none.
func (s *State) Solution(level int) string {
	if level < 0 || level >= len(s.Inputs) {
		return ""
	}
	return s.Inputs[level]
}

// SetSolution records a level's solution, growing the list as needed.
func (s *State) SetSolution(level int, solution string) {
	if level < 0 {
		return
	}
	for len(s.Inputs) <= level {
		s.Inputs = append(s.Inputs, "")
	}
	s.Inputs[level] = solution
}

// Load reads and validates a save file.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("save: reading %s: %w", path, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("save: parsing %s: %w", path, err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("save: %s is version %d, this build reads %d", path, s.Version, Version)
	}
	if s.Level < 0 {
		return nil, fmt.Errorf("save: %s names level %d", path, s.Level)
	}
	return &s, nil
}

// Write stores the state, creating parent directories as needed.
func (s *State) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("save: encoding: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save: creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save: writing %s: %w", path, err)
	}
	return nil
}

// NewSnapshot serializes a grid by object name so saves survive definition
// edits that renumber objects.
func NewSnapshot(def *gamedef.Game, g *grid.Grid) *Snapshot {
	sn := &Snapshot{Width: g.Width(), Height: g.Height()}
	sn.Cells = make([][]string, 0, g.Width()*g.Height())
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			var names []string
			for _, obj := range g.ObjectsAt(core.Position{X: x, Y: y}) {
				names = append(names, def.Objects[obj].Name)
			}
			sn.Cells = append(sn.Cells, names)
		}
	}
	return sn
}

// Grid rebuilds the serialized grid against a definition. Unknown object
// names and layer collisions are rejected.
func (sn *Snapshot) Grid(def *gamedef.Game) (*grid.Grid, error) {
	if sn.Width <= 0 || sn.Height <= 0 {
		return nil, fmt.Errorf("save: snapshot is %dx%d", sn.Width, sn.Height)
	}
	if len(sn.Cells) != sn.Width*sn.Height {
		return nil, fmt.Errorf("save: snapshot lists %d cells for a %dx%d grid", len(sn.Cells), sn.Width, sn.Height)
	}
	g := grid.New(sn.Width, sn.Height, def.LayerCount())
	for i, names := range sn.Cells {
		p := core.Position{X: i % sn.Width, Y: i / sn.Width}
		for _, name := range names {
			obj, ok := def.ObjectByName(name)
			if !ok {
				return nil, fmt.Errorf("save: cell %d holds unknown object %q", i, name)
			}
			layer := def.Objects[obj].Layer
			if g.Slot(p, layer).Occupied() {
				return nil, fmt.Errorf("save: cell %d stacks two objects on layer %q", i, def.Layers[layer])
			}
			g.SetSlot(p, layer, grid.Slot{Object: obj})
		}
	}
	return g, nil
}
