package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/internal/gamedef"
)

var infoCmd = &cobra.Command{
	Use:   "info <game>",
	Short: "Show a game's definition summary",
	Long: `Print the resolved shape of a game definition: objects, collision
layers, compiled rules, win conditions and levels.

Examples:
  rulegrid info boxpush
  rulegrid info ./games/mygame.json`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func runInfo(_ *cobra.Command, args []string) {
	def, entry, err := gamesCatalog().Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'rulegrid list' to see available games.")
		os.Exit(exitLoad)
	}

	fmt.Printf("%s (%s)\n", def.Title, entry.Name)
	if def.Meta.Author != "" {
		fmt.Printf("  author:   %s\n", def.Meta.Author)
	}
	if def.Meta.Homepage != "" {
		fmt.Printf("  homepage: %s\n", def.Meta.Homepage)
	}
	fmt.Println()

	fmt.Printf("Layers:  %d (%s)\n", def.LayerCount(), strings.Join(def.Layers, ", "))
	fmt.Printf("Objects: %d\n", len(def.Objects))
	fmt.Printf("Rules:   %d compiled in %d blocks (%d late)\n",
		countRules(def.Blocks)+countRules(def.LateBlocks),
		len(def.Blocks)+len(def.LateBlocks), len(def.LateBlocks))
	fmt.Printf("Levels:  %d maps, %d messages\n",
		def.MapLevelCount(), len(def.Levels)-def.MapLevelCount())

	if len(def.WinConds) > 0 {
		fmt.Println()
		fmt.Println("Win conditions:")
		for _, wc := range def.WinConds {
			line := fmt.Sprintf("  %s %s", wc.Qualifier, def.Tiles[wc.Tile].Name)
			if wc.On != gamedef.NoTile {
				line += " on " + def.Tiles[wc.On].Name
			}
			fmt.Println(line)
		}
	}

	if flags := behaviorFlags(def.Meta); len(flags) > 0 {
		fmt.Println()
		fmt.Println("Behavior:")
		for _, f := range flags {
			fmt.Printf("  %s\n", f)
		}
	}
}

// countRules counts compiled rules; a rule written for a direction group
// counts once per member direction.
func countRules(blocks []gamedef.RuleBlock) int {
	n := 0
	for _, b := range blocks {
		for _, g := range b.Groups {
			n += len(g.Rules)
		}
	}
	return n
}

func behaviorFlags(m gamedef.Metadata) []string {
	var flags []string
	if m.RunRulesOnLevelStart {
		flags = append(flags, "runs rules on level start")
	}
	if m.RequirePlayerMovement {
		flags = append(flags, "requires player movement")
	}
	if m.NoUndo {
		flags = append(flags, "undo disabled")
	}
	if m.NoRestart {
		flags = append(flags, "restart disabled")
	}
	return flags
}
