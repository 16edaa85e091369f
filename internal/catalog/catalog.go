// Package catalog discovers playable game definitions: a built-in set
// embedded in the binary plus any configured directories. Commands refer
// to games by catalog name or by explicit file path.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rulegrid/rulegrid/internal/gamedef"
)

//go:embed games/*.json
var builtinFS embed.FS

// Entry describes one game the catalog can open.
type Entry struct {
	Name    string // catalog name, the file base without extension
	Title   string
	Author  string
	Levels  int    // playable map levels
	Path    string // source file, empty for built-in games
	Builtin bool
}

// Catalog resolves game names against a set of directories and the
// built-in games. Directories are searched in order and shadow the
// built-ins, so a user file named like a built-in overrides it.
type Catalog struct {
	dirs []string
}

// New creates a catalog over the given directories. Empty entries are
// dropped so an unset games_dir needs no special-casing by callers.
func New(dirs ...string) *Catalog {
	c := &Catalog{}
	for _, d := range dirs {
		if d != "" {
			c.dirs = append(c.dirs, d)
		}
	}
	return c
}

// List returns every loadable game sorted by name. Files that fail to
// load are skipped; list shows playable games only.
func (c *Catalog) List() []Entry {
	seen := make(map[string]bool)
	var entries []Entry

	for _, dir := range c.dirs {
		names, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range names {
			if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
				continue
			}
			name := strings.TrimSuffix(de.Name(), ".json")
			if seen[name] {
				continue
			}
			path := filepath.Join(dir, de.Name())
			def, err := gamedef.LoadFile(path)
			if err != nil {
				continue
			}
			seen[name] = true
			entries = append(entries, newEntry(name, path, false, def))
		}
	}

	files, err := builtinFS.ReadDir("games")
	if err == nil {
		for _, de := range files {
			name := strings.TrimSuffix(de.Name(), ".json")
			if seen[name] {
				continue
			}
			def, err := loadBuiltin(de.Name())
			if err != nil {
				continue
			}
			seen[name] = true
			entries = append(entries, newEntry(name, "", true, def))
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Open loads a game by catalog name or by explicit file path. Paths are
// recognized by existing on disk; everything else resolves through the
// search order.
func (c *Catalog) Open(nameOrPath string) (*gamedef.Game, Entry, error) {
	if st, err := os.Stat(nameOrPath); err == nil && !st.IsDir() {
		def, err := gamedef.LoadFile(nameOrPath)
		if err != nil {
			return nil, Entry{}, err
		}
		name := strings.TrimSuffix(filepath.Base(nameOrPath), filepath.Ext(nameOrPath))
		return def, newEntry(name, nameOrPath, false, def), nil
	}

	for _, dir := range c.dirs {
		path := filepath.Join(dir, nameOrPath+".json")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		def, err := gamedef.LoadFile(path)
		if err != nil {
			return nil, Entry{}, err
		}
		return def, newEntry(nameOrPath, path, false, def), nil
	}

	if def, err := loadBuiltin(nameOrPath + ".json"); err == nil {
		return def, newEntry(nameOrPath, "", true, def), nil
	}

	return nil, Entry{}, fmt.Errorf("catalog: unknown game %q", nameOrPath)
}

// Exists reports whether a name resolves to a game.
func (c *Catalog) Exists(name string) bool {
	_, _, err := c.Open(name)
	return err == nil
}

func loadBuiltin(file string) (*gamedef.Game, error) {
	data, err := builtinFS.ReadFile("games/" + file)
	if err != nil {
		return nil, err
	}
	return gamedef.Load(data)
}

func newEntry(name, path string, builtin bool, def *gamedef.Game) Entry {
	return Entry{
		Name:    name,
		Title:   def.Title,
		Author:  def.Meta.Author,
		Levels:  def.MapLevelCount(),
		Path:    path,
		Builtin: builtin,
	}
}
