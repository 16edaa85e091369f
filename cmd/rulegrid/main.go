// rulegrid is a terminal runtime for rule-based grid puzzles: it plays,
// verifies and serves games written as layered-grid rewrite definitions.
//
// Usage:
//
//	rulegrid list              - List available games
//	rulegrid play [game]       - Play a game (picker menu when omitted)
//	rulegrid verify <game>     - Replay a recorded solution headlessly
//	rulegrid info <game>       - Show a game's definition summary
//	rulegrid stats [game]      - Show recorded results
//	rulegrid serve             - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>   - Config file (default: ~/.rulegrid/config.yaml)
//	--db <path>       - Results database path (overrides config)
//	--seed <value>    - RNG seed for play sessions (0 = use config)
//	--log-level <lv>  - Log verbosity: debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rulegrid/rulegrid/internal/catalog"
	"github.com/rulegrid/rulegrid/internal/config"
	"github.com/rulegrid/rulegrid/internal/storage"
)

// Exit codes. Verification distinguishes an unsolved replay from a broken
// game and from an engine fault so scripts can tell them apart.
const (
	exitOK     = 0
	exitFailed = 1
	exitLoad   = 2
	exitFault  = 3
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

var (
	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoad)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rulegrid",
	Short: "Rulegrid - rule-based grid puzzles in your terminal",
	Long: `Rulegrid runs puzzle games defined as rewrite rules over a layered
grid: each turn your input moves the players, the rules fire until they
settle, and a win condition check decides whether the level is done.

Available commands:
  list     - Show all available games
  play     - Play a game interactively
  verify   - Replay a recorded solution without a UI
  info     - Summarize a game definition
  stats    - View recorded results
  serve    - Start SSH server for remote play

Examples:
  rulegrid list
  rulegrid play boxpush
  rulegrid verify boxpush --solution "DDWWX"
  rulegrid serve --ssh :2222
  rulegrid stats boxpush`,
	PersistentPreRun: loadRuntime,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: ~/.rulegrid/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to results database (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed for sessions (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadRuntime resolves the config file and flag overrides every command
// runs under.
func loadRuntime(_ *cobra.Command, _ []string) {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitLoad)
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}

	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		lvl = log.WarnLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{Level: lvl})
	logger.Debug("runtime loaded", "data_dir", cfg.DataDir, "db", cfg.DBPath, "seed", cfg.Seed)
}

// gamesCatalog builds the catalog commands resolve games through.
func gamesCatalog() *catalog.Catalog {
	return catalog.New(config.ExpandPath(cfg.GamesDir))
}

// openStore opens the results database, returning nil when it cannot be
// opened so commands keep working without recording.
func openStore() *storage.Store {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		return nil
	}
	return store
}

// termSize reads the terminal dimensions, falling back to 80x24.
func termSize() (int, int) {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}
