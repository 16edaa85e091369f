// Package gamedef holds the immutable description of a puzzle game: objects,
// collision layers, legend tiles, rewrite rules, win conditions and levels.
// Definitions arrive as JSON, are resolved into flat arenas referenced by
// integer IDs, and are read-only after Load.
package gamedef

import "github.com/rulegrid/rulegrid/internal/core"

// ObjectID indexes Game.Objects.
type ObjectID int

// LayerID indexes Game.Layers.
type LayerID int

// TileID indexes Game.Tiles.
type TileID int

// NoTile marks an absent tile reference.
const NoTile TileID = -1

// NoObject marks an empty layer slot.
const NoObject ObjectID = -1

// Object is a single drawable thing occupying one layer of a cell.
type Object struct {
	Name  string
	Glyph rune
	Color core.Color
	Layer LayerID
}

// TileKind distinguishes the two legend expression forms.
type TileKind uint8

const (
	// TileAnd names objects that occupy a cell together.
	TileAnd TileKind = iota
	// TileOr names alternatives; a cell matches when any member is present.
	TileOr
)

// Tile is a legend entry: a named expression over objects. Every object
// also gets a single-member And tile under its own name, so rules can
// reference objects and legend glyphs interchangeably.
type Tile struct {
	Name    string
	Kind    TileKind
	Objects []ObjectID
}

// Qualifier selects the counting mode of a win condition.
type Qualifier uint8

const (
	QualifierNo Qualifier = iota
	QualifierSome
	QualifierAll
)

// String returns the qualifier keyword as written in definitions.
func (q Qualifier) String() string {
	switch q {
	case QualifierNo:
		return "no"
	case QualifierSome:
		return "some"
	case QualifierAll:
		return "all"
	default:
		return "unknown"
	}
}

// WinCondition is checked against the settled grid after every turn.
// Conditions are evaluated in order and the first satisfied one completes
// the level. All requires On.
type WinCondition struct {
	Qualifier Qualifier
	Tile      TileID
	On        TileID // NoTile when absent
}

// Level is either a playable map or a message screen.
type Level struct {
	IsMessage bool
	Message   string
	Width     int
	Height    int
	Rows      [][]TileID
}

// Metadata carries authorship info and engine behavior switches.
type Metadata struct {
	Author                string
	Homepage              string
	RunRulesOnLevelStart  bool
	RequirePlayerMovement bool
	NoUndo                bool
	NoRestart             bool
}

// Game is a complete resolved definition. Rule blocks are split by
// lateness: Blocks run before movement resolution each turn, LateBlocks
// after it.
type Game struct {
	Title      string
	Meta       Metadata
	Layers     []string
	Objects    []Object
	Tiles      []Tile
	Player     TileID // NoTile when the game defines no player
	Background TileID // NoTile when the game defines no background
	Blocks     []RuleBlock
	LateBlocks []RuleBlock
	WinConds   []WinCondition
	Levels     []Level

	tilesByName   map[string]TileID
	objectsByName map[string]ObjectID
}

// LayerCount returns the number of collision layers.
func (g *Game) LayerCount() int {
	return len(g.Layers)
}

// TileByName resolves a legend glyph or object name.
func (g *Game) TileByName(name string) (TileID, bool) {
	id, ok := g.tilesByName[name]
	return id, ok
}

// ObjectByName resolves an object name.
func (g *Game) ObjectByName(name string) (ObjectID, bool) {
	id, ok := g.objectsByName[name]
	return id, ok
}

// MapLevelCount returns the number of playable (non-message) levels.
func (g *Game) MapLevelCount() int {
	n := 0
	for _, lvl := range g.Levels {
		if !lvl.IsMessage {
			n++
		}
	}
	return n
}
