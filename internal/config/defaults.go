package config

import (
	_ "embed"
)

//go:embed defaults/rulegrid.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration, used when no config
// file is found and as the fallback for fields a file leaves unset.
func DefaultConfig() Config {
	return Config{
		DataDir: "~/.rulegrid",
		DBPath:  "~/.rulegrid/results.db",
		Seed:    1,
		UI: UIConfig{
			AltScreen: true,
			ShowHelp:  true,
		},
		Serve: ServeConfig{
			Address: ":23235",
		},
	}
}
