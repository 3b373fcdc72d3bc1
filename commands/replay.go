package commands

import (
	"context"
	"errors"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/config"
	"github.com/penwyp/go-gpio-trace/internal/core/replayer"
	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/penwyp/go-gpio-trace/internal/util"
	"github.com/spf13/cobra"
)

var (
	replayPin      int
	replayMaxDelay time.Duration
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Reproduce a recorded trace on an output pin",
	Long: `Reads a trace file and, for every line, waits the recorded delay and then
drives the output pin to the recorded bit. The first delay is always replayed
as zero. Any malformed line aborts before the pin is touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().IntVarP(&replayPin, "pin", "p", config.DefaultOutputPin,
		"Output line offset")
	replayCmd.Flags().DurationVar(&replayMaxDelay, "max-delay", 0,
		"Replay delays longer than this as zero (0 = disabled)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("pin") {
		cfg.OutputPin = replayPin
	}
	if flags.Changed("max-delay") {
		cfg.Replay.MaxDelay = replayMaxDelay
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	t, err := trace.ParseFile(args[0])
	if err != nil {
		return err
	}

	ctrl, err := openController(cfg.Backend, cfg.Chip)
	if err != nil {
		return err
	}

	pin, err := ctrl.Setup(cfg.OutputPin, gpio.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Cleanup(); err != nil {
			util.LogErrorf("Failed to release GPIO: %v", err)
		}
	}()

	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	util.LogInfo("Replaying", util.F("file", args[0]), util.F("pin", cfg.OutputPin), util.F("backend", cfg.Backend))

	r := replayer.New(pin, replayer.WithMaxDelay(cfg.Replay.MaxDelay))
	if err := r.Play(ctx, t); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
