package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/internal/catalog"
	"github.com/rulegrid/rulegrid/internal/config"
)

var flagListDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long: `Shows the built-in games plus any definitions found in the configured
games directory. Directory games shadow builtins with the same name.

Examples:
  rulegrid list
  rulegrid list --dir ./games`,
	Run: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListDir, "dir", "", "Extra directory to scan for game definitions")
}

func runList(_ *cobra.Command, _ []string) {
	cat := catalog.New(config.ExpandPath(flagListDir), config.ExpandPath(cfg.GamesDir))
	entries := cat.List()

	if len(entries) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available games:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, e := range entries {
		if len(e.Name) > maxNameLen {
			maxNameLen = len(e.Name)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-6s  %s\n", maxNameLen, "Name", "Levels", "Title")
	fmt.Printf("  %-*s  %-6s  %s\n", maxNameLen, "----", "------", "-----")

	// Print games
	for _, e := range entries {
		fmt.Printf("  %-*s  %-6d  %s\n", maxNameLen, e.Name, e.Levels, e.Title)
	}

	fmt.Println()
	fmt.Println("Run 'rulegrid play <name>' to play a game.")
}
