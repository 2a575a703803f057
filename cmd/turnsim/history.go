package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/turnsim/internal/platform/tui"
	"github.com/vovakirdan/turnsim/internal/registry"
	"github.com/vovakirdan/turnsim/internal/storage"
)

var (
	flagLimit  int
	flagBrowse bool
	flagClear  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [scenario]",
	Short: "Show recorded runs",
	Long: `List recorded runs, newest first. Runs are recorded by
'turnsim run --record' and by finished 'turnsim watch' sessions.

Examples:
  turnsim history
  turnsim history classic --limit 5
  turnsim history --browse
  turnsim history siege --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of runs to show")
	historyCmd.Flags().BoolVar(&flagBrowse, "browse", false, "Browse runs in an interactive table")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all runs of the given scenario")
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	scenarioID := ""
	if len(args) > 0 {
		scenarioID = args[0]
		if !registry.Exists(scenarioID) {
			logger.Warn("not a builtin scenario", "scenario", scenarioID)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagClear {
		if scenarioID == "" {
			return fmt.Errorf("--clear needs a scenario")
		}
		n, err := store.DeleteRuns(scenarioID)
		if err != nil {
			return err
		}
		logger.Info("runs deleted", "scenario", scenarioID, "count", n)
		return nil
	}

	if flagBrowse {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("--browse needs a terminal")
		}
		width, height := 80, 24
		if w, h, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
			width, height = w, h
		}
		_, err := tui.RunHistory(store, width, height)
		return err
	}

	runs, err := store.RecentRuns(scenarioID, flagLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	title := "Recent runs"
	if scenarioID != "" {
		title += " - " + scenarioID
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out)

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Record one with 'turnsim run --record'.")
		return nil
	}

	fmt.Fprintf(out, "  %-8s  %-10s  %6s  %-13s  %-12s  %s\n", "Run", "Scenario", "Frames", "Next phase", "Digest", "Date")
	fmt.Fprintf(out, "  %-8s  %-10s  %6s  %-13s  %-12s  %s\n", "---", "--------", "------", "----------", "------", "----")
	for _, r := range runs {
		fmt.Fprintf(out, "  %-8s  %-10s  %6d  %-13s  %-12s  %s\n",
			prefix(r.ID, 8), r.ScenarioID, r.Frames, r.FinalPhase, prefix(r.Digest, 12),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if scenarioID != "" {
		digests, err := store.Digests(scenarioID, runs[0].Frames, runs[0].RosterKey)
		if err == nil && len(digests) > 1 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Warning: %d different traces recorded for %d frames.\n", len(digests), runs[0].Frames)
		}
	}
	return nil
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
