package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/platform/tui"
	"github.com/vovakirdan/turnsim/internal/sim"
	"github.com/vovakirdan/turnsim/internal/storage"
)

var (
	flagWatchConfig string
	flagPace        string
	flagTickRate    int
	flagNoRecord    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [scenario]",
	Short: "Watch a scenario frame by frame",
	Long: `Play the scheduler in the terminal, one frame per tick.

Without a scenario, a menu lets you pick one and browse recorded runs.
Finished runs are saved to the history database unless --no-record.

Controls:
  Space/P    - Pause / resume
  N          - Step one frame while paused
  R          - Restart
  +/-        - Faster / slower
  Esc/B      - Back
  Q/Ctrl+C   - Quit

Pace options:
  slow    - 2 frames per second
  normal  - 6 frames per second
  fast    - 20 frames per second

Examples:
  turnsim watch
  turnsim watch classic
  turnsim watch siege --pace fast
  turnsim watch ambush --tick-rate 10 --frames 60`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchConfig, "config", "", "Path to custom scenario YAML")
	watchCmd.Flags().StringVar(&flagPace, "pace", string(config.PaceNormal), "Playback pace: slow, normal, fast")
	watchCmd.Flags().IntVar(&flagTickRate, "tick-rate", 0, "Frames per second (overrides --pace)")
	watchCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not save finished runs")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("watch needs a terminal; use 'turnsim run' for plain output")
	}

	pace, err := config.ParsePace(flagPace)
	if err != nil {
		return err
	}

	cfg := tui.DefaultWatchConfig()
	cfg.TickRate = config.TickRateForPace(pace)
	if flagTickRate > 0 {
		cfg.TickRate = flagTickRate
	}
	cfg.Frames = flagFrames
	if w, h, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}

	var store *storage.Store
	if !flagNoRecord {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("could not open run database, runs will not be saved", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	// Menu mode
	if len(args) == 0 && flagWatchConfig == "" {
		return tui.RunSession(store, nil, cfg)
	}

	sc, err := loadScenario(logger, scenarioArg(args), flagWatchConfig)
	if err != nil {
		return err
	}
	sched, err := sim.New(sc)
	if err != nil {
		return err
	}

	final, err := tui.RunWatch(sched, store, nil, cfg)
	if err != nil {
		return err
	}

	if id := final.RecordID(); id != "" {
		logger.Info("run recorded", "id", id, "scenario", sc.ID, "frames", sched.Frame())
	}
	return nil
}
