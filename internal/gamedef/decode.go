package gamedef

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/rulegrid/rulegrid/internal/core"
)

// file* types mirror the JSON layout of a game definition before name
// references are resolved into IDs.

type fileGame struct {
	Title         string                     `json:"title"`
	Metadata      fileMetadata               `json:"metadata"`
	Layers        []string                   `json:"layers"`
	Objects       []fileObject               `json:"objects"`
	Legend        map[string]json.RawMessage `json:"legend"`
	Player        string                     `json:"player"`
	Background    string                     `json:"background"`
	Rules         []json.RawMessage          `json:"rules"`
	WinConditions []fileWinCondition         `json:"win_conditions"`
	Levels        []fileLevel                `json:"levels"`
}

type fileMetadata struct {
	Author                string `json:"author"`
	Homepage              string `json:"homepage"`
	RunRulesOnLevelStart  bool   `json:"run_rules_on_level_start"`
	RequirePlayerMovement bool   `json:"require_player_movement"`
	NoUndo                bool   `json:"no_undo"`
	NoRestart             bool   `json:"no_restart"`
}

type fileObject struct {
	Name  string `json:"name"`
	Glyph string `json:"glyph"`
	Color string `json:"color"`
	Layer string `json:"layer"`
}

// fileLegendEntry is the combination form of a legend value. The plain form
// is a JSON string naming an existing tile.
type fileLegendEntry struct {
	And []string `json:"and"`
	Or  []string `json:"or"`
}

type fileWinCondition struct {
	Qualifier string `json:"qualifier"`
	Tile      string `json:"tile"`
	On        string `json:"on"`
}

type fileLevel struct {
	Map     []string `json:"map"`
	Message *string  `json:"message"`
}

// fileBlock is one entry of the top-level rules list. Its rules elements
// are either group objects (carrying their own "rules") or bare rule
// objects forming a single group.
type fileBlock struct {
	Loop   bool              `json:"loop"`
	Random bool              `json:"random"`
	Rules  []json.RawMessage `json:"rules"`
}

type fileGroup struct {
	Random bool       `json:"random"`
	Rules  []fileRule `json:"rules"`
}

type fileRule struct {
	Direction string        `json:"direction"`
	Late      bool          `json:"late"`
	Random    bool          `json:"random"`
	Match     []fileBracket `json:"match"`
	Replace   []fileBracket `json:"replace"`
	Commands  fileCommands  `json:"commands"`
}

// fileBracket is a run of cells; each cell is a list of matchers. Ellipsis,
// when present, is the number of cells before the gap.
type fileBracket struct {
	Cells    [][]fileMatcher `json:"cells"`
	Ellipsis *int            `json:"ellipsis"`
}

// fileMatcher names a tile by legend glyph or object name. Move is either
// absolute (up, down, left, right, stationary, action, randomdir) or
// relative to the rule direction (> < ^ v).
type fileMatcher struct {
	Tile   string `json:"tile"`
	Negate bool   `json:"negate"`
	Random bool   `json:"random"`
	Move   string `json:"move"`
}

type fileCommands struct {
	Message    *string `json:"message"`
	Again      bool    `json:"again"`
	Cancel     bool    `json:"cancel"`
	Checkpoint bool    `json:"checkpoint"`
	Restart    bool    `json:"restart"`
	Win        bool    `json:"win"`
	Sfx        bool    `json:"sfx"`
}

// Load resolves a JSON game definition into an immutable Game. Every name
// reference is checked here; a Game that loads is safe to run.
func Load(data []byte) (*Game, error) {
	var fg fileGame
	if err := json.Unmarshal(data, &fg); err != nil {
		return nil, fmt.Errorf("gamedef: parsing definition: %w", err)
	}
	b := &builder{file: &fg}
	return b.build()
}

// LoadFile reads and resolves a game definition from disk.
func LoadFile(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gamedef: reading %s: %w", path, err)
	}
	return Load(data)
}

type builder struct {
	file         *fileGame
	game         *Game
	layersByName map[string]LayerID
}

func (b *builder) build() (*Game, error) {
	fm := b.file.Metadata
	b.game = &Game{
		Title: b.file.Title,
		Meta: Metadata{
			Author:                fm.Author,
			Homepage:              fm.Homepage,
			RunRulesOnLevelStart:  fm.RunRulesOnLevelStart,
			RequirePlayerMovement: fm.RequirePlayerMovement,
			NoUndo:                fm.NoUndo,
			NoRestart:             fm.NoRestart,
		},
		Player:        NoTile,
		Background:    NoTile,
		tilesByName:   make(map[string]TileID),
		objectsByName: make(map[string]ObjectID),
	}

	steps := []func() error{
		b.buildLayers,
		b.buildObjects,
		b.buildLegend,
		b.resolveAnchors,
		b.buildWinConditions,
		b.buildLevels,
		b.buildRules,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := validateTiles(b.game); err != nil {
		return nil, err
	}
	return b.game, nil
}

func (b *builder) buildLayers() error {
	if len(b.file.Layers) == 0 {
		return fmt.Errorf("gamedef: no layers defined")
	}
	b.layersByName = make(map[string]LayerID, len(b.file.Layers))
	for i, name := range b.file.Layers {
		if name == "" {
			return fmt.Errorf("gamedef: layer %d has no name", i)
		}
		if _, dup := b.layersByName[name]; dup {
			return fmt.Errorf("gamedef: duplicate layer %q", name)
		}
		b.layersByName[name] = LayerID(i)
		b.game.Layers = append(b.game.Layers, name)
	}
	return nil
}

func (b *builder) buildObjects() error {
	if len(b.file.Objects) == 0 {
		return fmt.Errorf("gamedef: no objects defined")
	}
	glyphOwners := make(map[rune]string)
	for _, fo := range b.file.Objects {
		if fo.Name == "" {
			return fmt.Errorf("gamedef: object with empty name")
		}
		if _, dup := b.game.objectsByName[fo.Name]; dup {
			return fmt.Errorf("gamedef: duplicate object %q", fo.Name)
		}
		layer, ok := b.layersByName[fo.Layer]
		if !ok {
			return fmt.Errorf("gamedef: object %q: unknown layer %q", fo.Name, fo.Layer)
		}
		var glyph rune
		if fo.Glyph != "" {
			if utf8.RuneCountInString(fo.Glyph) != 1 {
				return fmt.Errorf("gamedef: object %q: glyph %q is not a single character", fo.Name, fo.Glyph)
			}
			glyph, _ = utf8.DecodeRuneInString(fo.Glyph)
			if owner, dup := glyphOwners[glyph]; dup {
				return fmt.Errorf("gamedef: objects %q and %q share glyph %q", owner, fo.Name, glyph)
			}
			glyphOwners[glyph] = fo.Name
		}
		// Unknown colors fall back to the terminal default; color is
		// cosmetic and never a reason to reject a definition.
		color, _ := core.ParseColor(fo.Color)
		id := ObjectID(len(b.game.Objects))
		b.game.Objects = append(b.game.Objects, Object{Name: fo.Name, Glyph: glyph, Color: color, Layer: layer})
		b.game.objectsByName[fo.Name] = id
	}
	return nil
}

// buildLegend fills the tile arena: one automatic And tile per object
// (reachable by object name and by glyph), then the explicit legend
// entries in sorted key order for deterministic IDs. Legend keys override
// automatic glyph entries.
func (b *builder) buildLegend() error {
	g := b.game
	for id, obj := range g.Objects {
		tid := b.addTile(Tile{Name: obj.Name, Kind: TileAnd, Objects: []ObjectID{ObjectID(id)}})
		g.tilesByName[obj.Name] = tid
		if obj.Glyph != 0 {
			key := string(obj.Glyph)
			if prev, taken := g.tilesByName[key]; taken && prev != tid {
				return fmt.Errorf("gamedef: glyph %q of object %q collides with %q", key, obj.Name, g.Tiles[prev].Name)
			}
			g.tilesByName[key] = tid
		}
	}

	keys := make([]string, 0, len(b.file.Legend))
	for k := range b.file.Legend {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == "" {
			return fmt.Errorf("gamedef: legend entry with empty key")
		}
		if err := b.resolveLegendEntry(key, b.file.Legend[key]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolveLegendEntry(key string, raw json.RawMessage) error {
	g := b.game

	var alias string
	if err := json.Unmarshal(raw, &alias); err == nil {
		tid, ok := g.tilesByName[alias]
		if !ok {
			return fmt.Errorf("gamedef: legend %q: unknown tile %q", key, alias)
		}
		g.tilesByName[key] = tid
		return nil
	}

	var entry fileLegendEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fmt.Errorf("gamedef: legend %q: expected a tile name or an and/or combination: %w", key, err)
	}
	switch {
	case len(entry.And) > 0 && len(entry.Or) > 0:
		return fmt.Errorf("gamedef: legend %q: cannot be both and and or", key)
	case len(entry.And) > 0:
		objs, err := b.combineMembers(key, entry.And, TileAnd)
		if err != nil {
			return err
		}
		g.tilesByName[key] = b.addTile(Tile{Name: key, Kind: TileAnd, Objects: objs})
	case len(entry.Or) > 0:
		objs, err := b.combineMembers(key, entry.Or, TileOr)
		if err != nil {
			return err
		}
		g.tilesByName[key] = b.addTile(Tile{Name: key, Kind: TileOr, Objects: objs})
	default:
		return fmt.Errorf("gamedef: legend %q: empty combination", key)
	}
	return nil
}

// combineMembers flattens member tiles into an object list. And members
// must be And tiles (their objects stack together); Or members may be
// single objects or other Or tiles (their alternatives union).
func (b *builder) combineMembers(key string, names []string, kind TileKind) ([]ObjectID, error) {
	var objs []ObjectID
	for _, name := range names {
		tid, ok := b.game.tilesByName[name]
		if !ok {
			return nil, fmt.Errorf("gamedef: legend %q: unknown tile %q", key, name)
		}
		t := b.game.Tiles[tid]
		switch {
		case kind == TileAnd && t.Kind != TileAnd:
			return nil, fmt.Errorf("gamedef: legend %q: cannot stack alternative %q", key, name)
		case kind == TileOr && t.Kind == TileAnd && len(t.Objects) != 1:
			return nil, fmt.Errorf("gamedef: legend %q: alternative %q must be a single object", key, name)
		}
		objs = append(objs, t.Objects...)
	}
	return objs, nil
}

func (b *builder) addTile(t Tile) TileID {
	id := TileID(len(b.game.Tiles))
	b.game.Tiles = append(b.game.Tiles, t)
	return id
}

func (b *builder) resolveAnchors() error {
	g := b.game
	if b.file.Player != "" {
		tid, ok := g.tilesByName[b.file.Player]
		if !ok {
			return fmt.Errorf("gamedef: unknown player tile %q", b.file.Player)
		}
		g.Player = tid
	}
	if b.file.Background != "" {
		tid, ok := g.tilesByName[b.file.Background]
		if !ok {
			return fmt.Errorf("gamedef: unknown background tile %q", b.file.Background)
		}
		if t := g.Tiles[tid]; t.Kind != TileAnd || len(t.Objects) != 1 {
			return fmt.Errorf("gamedef: background tile %q must be a single object", b.file.Background)
		}
		g.Background = tid
	}
	return nil
}

func (b *builder) buildWinConditions() error {
	for i, fw := range b.file.WinConditions {
		var q Qualifier
		switch fw.Qualifier {
		case "no":
			q = QualifierNo
		case "some", "any":
			q = QualifierSome
		case "all":
			q = QualifierAll
		default:
			return fmt.Errorf("gamedef: win condition %d: unknown qualifier %q", i, fw.Qualifier)
		}
		tile, ok := b.game.tilesByName[fw.Tile]
		if !ok {
			return fmt.Errorf("gamedef: win condition %d: unknown tile %q", i, fw.Tile)
		}
		wc := WinCondition{Qualifier: q, Tile: tile, On: NoTile}
		if fw.On != "" {
			on, ok := b.game.tilesByName[fw.On]
			if !ok {
				return fmt.Errorf("gamedef: win condition %d: unknown tile %q", i, fw.On)
			}
			wc.On = on
		} else if q == QualifierAll {
			return fmt.Errorf("gamedef: win condition %d: all requires on", i)
		}
		b.game.WinConds = append(b.game.WinConds, wc)
	}
	return nil
}

func (b *builder) buildLevels() error {
	if len(b.file.Levels) == 0 {
		return fmt.Errorf("gamedef: no levels defined")
	}
	for i, fl := range b.file.Levels {
		switch {
		case fl.Message != nil && len(fl.Map) > 0:
			return fmt.Errorf("gamedef: level %d: both map and message", i)
		case fl.Message != nil:
			b.game.Levels = append(b.game.Levels, Level{IsMessage: true, Message: *fl.Message})
		case len(fl.Map) > 0:
			lvl, err := b.buildMapLevel(i, fl.Map)
			if err != nil {
				return err
			}
			b.game.Levels = append(b.game.Levels, lvl)
		default:
			return fmt.Errorf("gamedef: level %d: neither map nor message", i)
		}
	}
	return nil
}

// buildMapLevel resolves glyph rows into tile rows. Map glyphs must be
// unambiguous: an Or tile cannot describe a concrete starting cell.
func (b *builder) buildMapLevel(index int, rows []string) (Level, error) {
	g := b.game
	width := utf8.RuneCountInString(rows[0])
	if width == 0 {
		return Level{}, fmt.Errorf("gamedef: level %d: empty row", index)
	}
	lvl := Level{Width: width, Height: len(rows)}
	for y, row := range rows {
		if n := utf8.RuneCountInString(row); n != width {
			return Level{}, fmt.Errorf("gamedef: level %d row %d: %d cells, expected %d", index, y, n, width)
		}
		cells := make([]TileID, 0, width)
		for _, r := range row {
			tid, ok := g.tilesByName[string(r)]
			if !ok {
				return Level{}, fmt.Errorf("gamedef: level %d row %d: unknown glyph %q", index, y, r)
			}
			if g.Tiles[tid].Kind == TileOr {
				return Level{}, fmt.Errorf("gamedef: level %d row %d: glyph %q is ambiguous", index, y, r)
			}
			cells = append(cells, tid)
		}
		lvl.Rows = append(lvl.Rows, cells)
	}
	return lvl, nil
}

func (b *builder) buildRules() error {
	for i, raw := range b.file.Rules {
		groups, loop, err := decodeBlock(raw)
		if err != nil {
			return fmt.Errorf("gamedef: rules block %d: %w", i, err)
		}
		var earlyGroups, lateGroups []RuleGroup
		for j, fg := range groups {
			group, late, err := b.compileGroup(fg)
			if err != nil {
				return fmt.Errorf("gamedef: rules block %d group %d: %w", i, j, err)
			}
			if late {
				lateGroups = append(lateGroups, group)
			} else {
				earlyGroups = append(earlyGroups, group)
			}
		}
		if len(earlyGroups) > 0 {
			b.game.Blocks = append(b.game.Blocks, RuleBlock{Loop: loop, Groups: earlyGroups})
		}
		if len(lateGroups) > 0 {
			b.game.LateBlocks = append(b.game.LateBlocks, RuleBlock{Loop: loop, Groups: lateGroups})
		}
	}
	return nil
}

// decodeBlock accepts the three block spellings: a bare rule list (one
// non-random group), a block object whose rules are rule objects (one
// group), or a block object whose rules are group objects.
func decodeBlock(raw json.RawMessage) ([]fileGroup, bool, error) {
	var rules []fileRule
	if err := json.Unmarshal(raw, &rules); err == nil {
		return []fileGroup{{Rules: rules}}, false, nil
	}

	var fb fileBlock
	if err := json.Unmarshal(raw, &fb); err != nil {
		return nil, false, fmt.Errorf("expected a block object or a rule list: %w", err)
	}
	if len(fb.Rules) == 0 {
		return nil, false, fmt.Errorf("empty block")
	}

	if blockHoldsGroups(fb.Rules[0]) {
		groups := make([]fileGroup, 0, len(fb.Rules))
		for j, rg := range fb.Rules {
			var g fileGroup
			if err := json.Unmarshal(rg, &g); err != nil {
				return nil, false, fmt.Errorf("group %d: %w", j, err)
			}
			groups = append(groups, g)
		}
		return groups, fb.Loop, nil
	}

	group := fileGroup{Random: fb.Random}
	for j, rr := range fb.Rules {
		var r fileRule
		if err := json.Unmarshal(rr, &r); err != nil {
			return nil, false, fmt.Errorf("rule %d: %w", j, err)
		}
		group.Rules = append(group.Rules, r)
	}
	return []fileGroup{group}, fb.Loop, nil
}

// blockHoldsGroups distinguishes group objects from rule objects by the
// presence of a nested "rules" key, which rules never carry.
func blockHoldsGroups(raw json.RawMessage) bool {
	var probe struct {
		Rules json.RawMessage `json:"rules"`
	}
	return json.Unmarshal(raw, &probe) == nil && probe.Rules != nil
}
