package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/sim"
	"github.com/vovakirdan/turnsim/internal/storage"
)

var (
	flagConfig string
	flagFormat string
	flagRecord bool
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run a scenario headless and print its trace",
	Long: `Run the scheduler for the scenario's frame budget and print one line
per event to stdout:

  Frame [1]: Regenerating
  Frame [1]: Hero rdy
  Frame [2]: Action select
  Frame [2]: Hero move [3]

The scenario defaults to classic, which runs 31 frames. Diagnostics go
to stderr, so the trace can be piped or diffed.

Scenario lookup order:
  --config <path> -> ~/.turnsim/scenarios/<id>.yaml -> ./scenarios/<id>.yaml -> builtin

Examples:
  turnsim run
  turnsim run siege --frames 120
  turnsim run --format json | jq .
  turnsim run ambush --record
  turnsim run mine --config ./mine.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom scenario YAML")
	runCmd.Flags().StringVar(&flagFormat, "format", "text", "Trace format: text or json")
	runCmd.Flags().BoolVar(&flagRecord, "record", false, "Save the run to the history database")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	format, err := sim.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	sc, err := loadScenario(logger, scenarioArg(args), flagConfig)
	if err != nil {
		return err
	}

	sink := sim.NewWriterSink(cmd.OutOrStdout(), format)
	sched, err := sim.New(sc, sim.WithEmitter(sink))
	if err != nil {
		return err
	}

	res, err := sched.Run(cmd.Context(), 0)
	if err != nil {
		logger.Warn("run interrupted", "frame", res.Frames, "error", err)
		return err
	}
	if err := sink.Err(); err != nil {
		return fmt.Errorf("cannot write trace: %w", err)
	}
	logger.Debug("run finished", "scenario", sc.ID, "frames", res.Frames, "next", res.Final.Phase, "digest", res.Digest)

	if flagRecord {
		return recordRun(logger, sc, res)
	}
	return nil
}

// recordRun saves res together with the scenario that produced it and
// warns when an earlier recording of the same scenario, roster and budget
// produced a different trace.
func recordRun(logger *log.Logger, sc config.Scenario, res sim.Result) error {
	rec, err := storage.NewRunRecord(sc, res)
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	diverged, earlier, err := store.Diverged(rec)
	if err != nil {
		return err
	}
	if diverged {
		logger.Warn("trace differs from earlier runs", "scenario", sc.ID, "frames", res.Frames,
			"digest", res.Digest[:12], "earlier", len(earlier))
	}

	id, err := store.SaveRun(rec)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "id", id, "scenario", sc.ID, "digest", res.Digest[:12])
	return nil
}
