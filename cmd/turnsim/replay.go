package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/sim"
	"github.com/vovakirdan/turnsim/internal/storage"
)

var flagVerify bool

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Print a recorded trace",
	Long: `Print the trace of a recorded run. The run ID may be shortened to
any unique prefix of at least 8 characters, as shown by 'turnsim history'.

With --verify the scenario stored with the run is run again for the same
number of frames and the new trace digest is compared with the recorded
one. The scenario file the run was loaded from is not needed.

Examples:
  turnsim replay 3f2a9c1e
  turnsim replay 3f2a9c1e --verify`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagVerify, "verify", false, "Re-run the scenario and compare digests")
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Run(args[0])
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no run %q (run 'turnsim history' to list runs)", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), run.Trace)

	if !flagVerify {
		return nil
	}

	sc, stored, err := run.ScenarioConfig()
	if err != nil {
		return fmt.Errorf("run %s: %w", run.ID, err)
	}
	if !stored {
		// Recorded before scenarios were kept with runs
		logger.Warn("run has no stored scenario, using the current one", "scenario", run.ScenarioID)
		if sc, _, err = config.Load(run.ScenarioID, ""); err != nil {
			return err
		}
	}
	sched, err := sim.New(sc)
	if err != nil {
		return err
	}
	res, err := sched.Run(cmd.Context(), run.Frames)
	if err != nil {
		return err
	}

	if res.Digest != run.Digest {
		logger.Error("replay differs from recording", "run", run.ID, "recorded", run.Digest[:min(12, len(run.Digest))],
			"replayed", res.Digest[:12])
		return fmt.Errorf("run %s does not reproduce", run.ID)
	}
	logger.Info("replay matches recording", "run", run.ID, "digest", res.Digest[:12])
	return nil
}
