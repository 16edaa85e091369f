package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/internal/platform/tui"
	"github.com/rulegrid/rulegrid/internal/storage"
)

var (
	flagStatsLimit int
	flagStatsTUI   bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [game]",
	Short: "Show recorded results",
	Long: `Display recorded play and verification results. With a game argument
the latest runs for that game are listed; without one every game is
summarized. --tui opens the interactive results browser instead.

Examples:
  rulegrid stats
  rulegrid stats boxpush
  rulegrid stats boxpush --limit 50
  rulegrid stats --tui`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", 20, "Number of runs to show")
	statsCmd.Flags().BoolVar(&flagStatsTUI, "tui", false, "Browse results interactively")
}

func runStats(_ *cobra.Command, args []string) {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(exitLoad)
	}

	if flagStatsTUI {
		width, height := termSize()
		_, tuiErr := tui.RunStats(store, width, height)
		store.Close()
		if tuiErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", tuiErr)
			os.Exit(exitLoad)
		}
		return
	}

	if len(args) == 1 {
		showGameStats(store, args[0])
		return
	}
	showAllStats(store)
}

// showGameStats prints the latest runs and the summary line for one game.
func showGameStats(store *storage.Store, game string) {
	sum, err := store.GameSummary(game)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(exitLoad)
	}
	results, err := store.Results(game, flagStatsLimit)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(exitLoad)
	}
	defer store.Close()

	fmt.Printf("Results - %s\n", game)
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'rulegrid play %s' to record the first run!\n", game)
		return
	}

	// Print header
	fmt.Printf("  %-5s  %-8s  %-7s  %-6s  %s\n", "Level", "Status", "Mode", "Turns", "Date")
	fmt.Printf("  %-5s  %-8s  %-7s  %-6s  %s\n", "-----", "------", "----", "-----", "----")

	// Print runs, newest first
	for _, r := range results {
		dateStr := r.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-5d  %-8s  %-7s  %-6d  %s\n", r.Level, r.Status, r.Mode, r.Turns, dateStr)
	}

	fmt.Println()
	fmt.Printf("Runs: %d  Solved: %d", sum.Runs, sum.Solved)
	if sum.Faults > 0 {
		fmt.Printf("  Faults: %d", sum.Faults)
	}
	if sum.BestTurns > 0 {
		fmt.Printf("  Best: %d turns", sum.BestTurns)
	}
	fmt.Println()
}

// showAllStats prints one summary row per game.
func showAllStats(store *storage.Store) {
	sums, err := store.AllSummaries()
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(exitLoad)
	}
	defer store.Close()

	if len(sums) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Println("Play or verify a game first.")
		return
	}

	// Calculate column widths
	maxNameLen := 4 // "Game" header
	for _, s := range sums {
		if len(s.Game) > maxNameLen {
			maxNameLen = len(s.Game)
		}
	}

	fmt.Println("Recorded results:")
	fmt.Println()
	fmt.Printf("  %-*s  %-5s  %-7s  %-7s  %s\n", maxNameLen, "Game", "Runs", "Solved", "Faults", "Last run")
	fmt.Printf("  %-*s  %-5s  %-7s  %-7s  %s\n", maxNameLen, "----", "----", "------", "------", "--------")

	for _, s := range sums {
		fmt.Printf("  %-*s  %-5d  %-7d  %-7d  %s\n",
			maxNameLen, s.Game, s.Runs, s.Solved, s.Faults, s.LastRun.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'rulegrid stats <game>' for per-run detail.")
}
