// turnsim runs a deterministic turn-based scheduler for one hero and a
// handful of enemies, and lets you watch, record and replay its trace.
//
// Usage:
//
//	turnsim run [scenario]      - Run headless and print the trace
//	turnsim watch [scenario]    - Watch the scheduler frame by frame
//	turnsim list                - List available scenarios
//	turnsim history [scenario]  - Show recorded runs
//	turnsim replay <run-id>     - Print a recorded trace
//	turnsim serve               - Start SSH server for remote viewers
//
// Global flags:
//
//	--frames <n>        - Frame budget (default: the scenario's, 31 for classic)
//	--db <path>         - Set database path (default: ~/.turnsim/runs.db)
//	--log-level <lvl>   - Diagnostics level on stderr (default: info)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/turnsim/internal/config"
	_ "github.com/vovakirdan/turnsim/internal/scenarios" // Register builtin scenarios
)

var (
	// Global flags
	flagFrames   int
	flagDBPath   string
	flagLogLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "turnsim",
	Short: "turnsim - a deterministic turn scheduler",
	Long: `turnsim advances one hero and up to five enemies through a fixed
cycle of phases: Regenerating, Action select, Executing and End turn.
Energy refills every frame; a full gauge earns an actor a move or an
attack.

Available commands:
  run      - Run a scenario headless and print its trace
  watch    - Watch a scenario frame by frame
  list     - Show all available scenarios
  history  - Show recorded runs
  replay   - Print a recorded trace
  serve    - Start SSH server for remote viewers

Examples:
  turnsim run
  turnsim run siege --frames 100 --format json
  turnsim watch ambush --pace slow
  turnsim history classic
  turnsim serve --ssh :2222`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFrames, "frames", 0, "Frame budget (0 = scenario default)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.turnsim/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds the stderr diagnostics logger for a command.
func newLogger(cmd *cobra.Command) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "turnsim",
	}), nil
}

// scenarioArg returns the scenario named on the command line, or classic.
func scenarioArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "classic"
}

// loadScenario resolves a scenario through the config search path and
// applies the --frames override.
func loadScenario(logger *log.Logger, id, customPath string) (config.Scenario, error) {
	sc, src, err := config.Load(id, customPath)
	if err != nil {
		if customPath == "" {
			return sc, fmt.Errorf("%w (run 'turnsim list' to see available scenarios)", err)
		}
		return sc, err
	}
	logger.Debug("scenario loaded", "id", sc.ID, "source", src, "frames", sc.FrameBudget())

	if flagFrames < 0 {
		return sc, fmt.Errorf("--frames must not be negative, got %d", flagFrames)
	}
	if flagFrames > 0 {
		sc.Frames = flagFrames
	}
	return sc, nil
}
