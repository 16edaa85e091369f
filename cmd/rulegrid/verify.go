package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/gamedef"
	"github.com/rulegrid/rulegrid/internal/replay"
	"github.com/rulegrid/rulegrid/internal/save"
	"github.com/rulegrid/rulegrid/internal/storage"
)

var (
	flagVerifyLevel int
	flagSolution    string
	flagReplayFile  string
	flagSmoke       bool
	flagNoRecord    bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify <game>",
	Short: "Replay a recorded solution headlessly",
	Long: `Verify a solution against one level without a terminal UI.

The solution comes from --solution, from the save file given with
--replay-file, or from stdin, in that order. A solution is a string of
recorded inputs: W/S/A/D move, X acts, . waits, Z undoes, R restarts.
A lone - means no solution is known and a # marks a checkpoint restore;
both verify as SKIPPED because the replay cannot be completed.

Exit codes:
  0 - solution solved the level (or was skipped)
  1 - solution replayed cleanly but did not solve the level
  2 - game or solution could not be loaded
  3 - the engine faulted while replaying

Examples:
  rulegrid verify boxpush --solution "DDWWX"
  rulegrid verify boxpush --level 2 --replay-file ~/.rulegrid/saves/boxpush.json
  rulegrid verify boxpush --smoke
  echo "WWXDD" | rulegrid verify boxpush`,
	Args: cobra.ExactArgs(1),
	Run:  runVerify,
}

func init() {
	verifyCmd.Flags().IntVar(&flagVerifyLevel, "level", 0, "Level to verify (0-based)")
	verifyCmd.Flags().StringVar(&flagSolution, "solution", "", "Solution string to replay")
	verifyCmd.Flags().StringVar(&flagReplayFile, "replay-file", "", "Save file to read the level's solution from")
	verifyCmd.Flags().BoolVar(&flagSmoke, "smoke", false, "Run a single action turn and report engine health")
	verifyCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not record the result")
}

func runVerify(_ *cobra.Command, args []string) {
	def, entry, err := gamesCatalog().Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'rulegrid list' to see available games.")
		os.Exit(exitLoad)
	}
	if flagVerifyLevel < 0 || flagVerifyLevel >= len(def.Levels) {
		fmt.Fprintf(os.Stderr, "Error: level %d out of range: %s has %d levels\n",
			flagVerifyLevel, entry.Name, len(def.Levels))
		os.Exit(exitLoad)
	}

	if flagSmoke {
		os.Exit(runSmoke(def, entry.Name))
	}

	solution, err := resolveSolution(flagVerifyLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitLoad)
	}

	start := time.Now()
	rep, err := replay.Run(def, flagVerifyLevel, solution, cfg.Seed)
	if err != nil {
		if errors.Is(err, engine.ErrIterationCap) {
			fmt.Fprintf(os.Stderr, "Error: engine fault: %v\n", err)
			recordVerify(entry.Name, storage.StatusFault, rep, time.Since(start))
			os.Exit(exitFault)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitLoad)
	}

	fmt.Printf("%s - %s level %d\n", rep.Verdict, entry.Name, rep.Level)
	fmt.Printf("  inputs: %d  turns: %d\n", rep.Inputs, rep.Turns)
	if rep.Reason != "" {
		fmt.Printf("  reason: %s\n", rep.Reason)
	}

	recordVerify(entry.Name, rep.Verdict.String(), rep, time.Since(start))

	if rep.Verdict == replay.VerdictFailed {
		os.Exit(exitFailed)
	}
}

// runSmoke steps one action turn to prove the definition loads and its
// rule pipeline settles. It says nothing about solutions.
func runSmoke(def *gamedef.Game, name string) int {
	sess, err := engine.NewSession(def, flagVerifyLevel, cfg.Seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitLoad
	}
	if _, err := sess.Step(core.InputAction); err != nil {
		fmt.Fprintf(os.Stderr, "Error: engine fault: %v\n", err)
		return exitFault
	}
	fmt.Printf("OK - %s level %d steps cleanly\n", name, flagVerifyLevel)
	return exitOK
}

// resolveSolution picks the solution source: the --solution flag, the
// replay file's entry for the level, then stdin.
func resolveSolution(level int) (string, error) {
	if flagSolution != "" {
		return flagSolution, nil
	}
	if flagReplayFile != "" {
		st, err := save.Load(flagReplayFile)
		if err != nil {
			return "", err
		}
		sol := st.Solution(level)
		if sol == "" {
			return "", fmt.Errorf("replay file has no solution for level %d", level)
		}
		return sol, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	sol := strings.TrimSpace(string(data))
	if sol == "" {
		return "", errors.New("no solution: pass --solution, --replay-file or pipe one on stdin")
	}
	return sol, nil
}

// recordVerify stores the outcome, best-effort.
func recordVerify(game, status string, rep replay.Report, d time.Duration) {
	if flagNoRecord {
		return
	}
	store := openStore()
	if store == nil {
		return
	}
	defer store.Close()
	//nolint:errcheck // best-effort record, the verdict was already printed
	store.RecordResult(storage.Result{
		Game:     game,
		Level:    rep.Level,
		Status:   status,
		Mode:     storage.ModeVerify,
		Turns:    rep.Turns,
		Duration: d,
	})
}
