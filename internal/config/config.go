// Package config provides YAML-based runtime configuration for the
// rulegrid platform: data locations, the results database, the default
// seed and the UI and SSH serving switches.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config is the runtime configuration shared by every command.
type Config struct {
	// DataDir is where rulegrid keeps its files: saves, the results
	// database and the auto-generated SSH host key.
	DataDir string `yaml:"data_dir"`

	// DBPath is the results database. Defaults to <data_dir>/results.db.
	DBPath string `yaml:"db_path"`

	// GamesDir is an extra directory scanned for game definitions in
	// addition to the built-in catalog.
	GamesDir string `yaml:"games_dir"`

	// Sound enables the terminal bell on sfx commands.
	Sound bool `yaml:"sound"`

	// Seed is the default randomness seed for play sessions. Verification
	// always runs under the seed it is given explicitly.
	Seed int64 `yaml:"seed"`

	UI    UIConfig    `yaml:"ui"`
	Serve ServeConfig `yaml:"serve"`
}

// UIConfig holds the interactive play settings.
type UIConfig struct {
	AltScreen bool `yaml:"alt_screen"`
	ShowHelp  bool `yaml:"show_help"`
}

// ServeConfig holds the SSH server settings.
type ServeConfig struct {
	Address string `yaml:"address"`
	// HostKey is the host key file; auto-generated under data_dir when
	// empty.
	HostKey string `yaml:"host_key"`
}

// SavePath returns the save file location for a game under the data
// directory.
func (c Config) SavePath(game string) string {
	return filepath.Join(ExpandPath(c.DataDir), "saves", game+".json")
}

// HostKeyPath returns the configured host key file, falling back to the
// data directory.
func (c Config) HostKeyPath() string {
	if c.Serve.HostKey != "" {
		return ExpandPath(c.Serve.HostKey)
	}
	return filepath.Join(ExpandPath(c.DataDir), "host_key")
}

// applyDefaults fills fields a partial config file left empty so callers
// never see zero-valued paths.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "results.db")
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.Serve.Address == "" {
		c.Serve.Address = def.Serve.Address
	}
}

// ExpandPath resolves a leading ~ against the home directory. Paths
// without one pass through unchanged, as does a path when the home
// directory cannot be determined.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
