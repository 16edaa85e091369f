package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/platform/tui"
	"github.com/rulegrid/rulegrid/internal/save"
	"github.com/rulegrid/rulegrid/internal/storage"
)

var (
	flagPlayLevel int
	flagNoSave    bool
	flagSaveFile  string
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Play a game interactively. With no argument a picker lists the
catalog; with one the game starts directly. The argument is a catalog
name or a path to a definition file.

Progress is saved per game: finishing a level records its solution and
a later run resumes at the first unsolved level, or at a saved
checkpoint inside it.

Controls:
  Arrows/WASD  - Move
  X/Space      - Action
  .            - Wait
  Z/U          - Undo
  R            - Restart level
  Esc/Q        - Back
  Ctrl+C       - Quit

Examples:
  rulegrid play
  rulegrid play boxpush
  rulegrid play boxpush --level 3
  rulegrid play ./games/mygame.json --no-save`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlayLevel, "level", -1, "Start at this level (0-based; overrides saved progress)")
	playCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not load or write progress")
	playCmd.Flags().StringVar(&flagSaveFile, "save-file", "", "Progress file (default: <data_dir>/saves/<game>.json)")
}

func runPlay(_ *cobra.Command, args []string) {
	store := openStore()

	var code int
	if len(args) == 1 {
		code = playOne(store, args[0])
	} else {
		code = playPicker(store)
	}

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if code != exitOK {
		os.Exit(code)
	}
}

// playOne runs one game from the catalog until the player leaves it.
func playOne(store *storage.Store, game string) int {
	def, entry, err := gamesCatalog().Open(game)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'rulegrid list' to see available games.")
		return exitLoad
	}

	opts := tui.PlayOptions{
		Name:  entry.Name,
		Store: store,
		Sound: cfg.Sound,
	}

	st := save.New()
	if !flagNoSave {
		path := flagSaveFile
		if path == "" {
			path = cfg.SavePath(entry.Name)
		}
		st = loadState(path)
		opts.SavePath = path
		opts.State = st
	}

	// An explicit --level starts that level fresh; otherwise play resumes
	// where the save left off.
	level := st.Level
	fromSave := true
	if flagPlayLevel >= 0 {
		level = flagPlayLevel
		fromSave = false
	}
	if level < 0 || level >= len(def.Levels) {
		level = 0
		fromSave = false
	}

	sess, err := engine.NewSession(def, level, cfg.Seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitLoad
	}
	logger.Debug("session started", "game", entry.Name, "level", level, "seed", cfg.Seed)

	if fromSave && st.Checkpoint != nil {
		cp, cpErr := st.Checkpoint.Grid(def)
		if cpErr == nil {
			cpErr = sess.LoadCheckpoint(cp)
		}
		if cpErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring saved checkpoint: %v\n", cpErr)
		}
	}

	if err := tui.RunPlay(sess, opts, cfg.UI.AltScreen); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		return exitFault
	}
	return exitOK
}

// playPicker loops the picker menu until the player quits.
func playPicker(store *storage.Store) int {
	for {
		res, err := tui.RunPicker(gamesCatalog().List(), store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitLoad
		}
		if res.Quit {
			return exitOK
		}

		if res.WantsStats {
			width, height := termSize()
			goBack, statsErr := tui.RunStats(store, width, height)
			if statsErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", statsErr)
			}
			if goBack {
				continue
			}
			return exitOK
		}

		if res.Name == "" {
			return exitOK
		}
		if code := playOne(store, res.Name); code == exitFault {
			return code
		}
		// Load errors were already reported; back to the picker.
	}
}

// loadState reads saved progress, starting fresh when the file does not
// exist or cannot be used.
func loadState(path string) *save.State {
	st, err := save.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: ignoring save file: %v\n", err)
		}
		return save.New()
	}
	return st
}
