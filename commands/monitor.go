package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/config"
	"github.com/penwyp/go-gpio-trace/internal/core/recorder"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/penwyp/go-gpio-trace/internal/util"
	"github.com/spf13/cobra"
)

var (
	monitorPin         int
	monitorChangesOnly bool
	monitorInterval    time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print the raw input level on every sample",
	Long: `Reads the input pin in a loop and prints its level (0 or 1) on every sample,
which is useful to check wiring before recording. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().IntVarP(&monitorPin, "pin", "p", config.DefaultInputPin,
		"Input line offset")
	monitorCmd.Flags().BoolVarP(&monitorChangesOnly, "changes-only", "c", false,
		"Only print when the level changes")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0,
		"Delay between samples (0 = busy poll)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("pin") {
		cfg.InputPin = monitorPin
	}

	ctrl, err := openController(cfg.Backend, cfg.Chip)
	if err != nil {
		return err
	}
	pin, err := ctrl.Setup(cfg.InputPin, gpio.Input)
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

	util.LogInfo("Monitoring", util.F("pin", cfg.InputPin), util.F("changes_only", monitorChangesOnly))
	return monitorLevels(ctx, pin, cmd.OutOrStdout(), monitorChangesOnly, monitorInterval)
}

// monitorLevels prints one line per sample, or per change when changesOnly
// is set, until ctx ends.
func monitorLevels(ctx context.Context, pin recorder.Reader, w io.Writer, changesOnly bool, interval time.Duration) error {
	last := -1
	for ctx.Err() == nil {
		level, err := pin.Read()
		if err != nil {
			return fmt.Errorf("failed to read level: %w", err)
		}
		if !changesOnly || level != last {
			if _, err := fmt.Fprintln(w, level); err != nil {
				return err
			}
		}
		last = level

		if interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
	}
	return nil
}
