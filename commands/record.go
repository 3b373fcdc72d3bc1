package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/config"
	"github.com/penwyp/go-gpio-trace/internal/core/recorder"
	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/penwyp/go-gpio-trace/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	recordPin          int
	recordMode         string
	recordPollInterval time.Duration
	recordDebounce     time.Duration
	recordOutput       string
	recordPrecision    int
	recordTab          bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Capture transitions on an input pin until interrupted",
	Long: `Samples the input pin and prints "<elapsed_seconds> <bit>" for every level
change. The initial level is not printed. Stop with Ctrl-C; the pin is released
on exit.`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().IntVarP(&recordPin, "pin", "p", config.DefaultInputPin,
		"Input line offset")
	recordCmd.Flags().StringVar(&recordMode, "mode", config.ModePoll,
		"Sampling mode (poll, edge)")
	recordCmd.Flags().DurationVar(&recordPollInterval, "poll-interval", 0,
		"Delay between samples in poll mode (0 = busy poll)")
	recordCmd.Flags().DurationVar(&recordDebounce, "debounce", 0,
		"Kernel debounce period in edge mode (0 = record every edge)")
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "",
		"Write the trace to a file instead of stdout")
	recordCmd.Flags().IntVar(&recordPrecision, "precision", -1,
		"Decimals for elapsed seconds (-1 = shortest exact)")
	recordCmd.Flags().BoolVar(&recordTab, "tab", false,
		"Separate fields with a tab")
}

func runRecord(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("pin") {
		cfg.InputPin = recordPin
	}
	if flags.Changed("mode") {
		cfg.Record.Mode = recordMode
	}
	if flags.Changed("poll-interval") {
		cfg.Record.PollInterval = recordPollInterval
	}
	if flags.Changed("debounce") {
		cfg.Record.Debounce = recordDebounce
	}
	if flags.Changed("precision") {
		cfg.Record.Precision = recordPrecision
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctrl, err := openController(cfg.Backend, cfg.Chip)
	if err != nil {
		return err
	}

	setupOpts := []gpio.SetupOption{}
	edgeMode := cfg.Record.Mode == config.ModeEdge
	if edgeMode {
		setupOpts = append(setupOpts, gpio.WithEdges(), gpio.WithDebounce(cfg.Record.Debounce))
	}

	pin, err := ctrl.Setup(cfg.InputPin, gpio.Input, setupOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Cleanup(); err != nil {
			util.LogErrorf("Failed to release GPIO: %v", err)
		}
	}()

	var edges <-chan gpio.Edge
	if edgeMode {
		src, ok := pin.(gpio.EdgeSource)
		if !ok {
			return fmt.Errorf("backend %s does not support edge events", cfg.Backend)
		}
		edges = src.Edges()
	}

	// The output is opened only once the pin is configured so a hardware
	// failure leaves an earlier capture untouched.
	var out io.Writer = cmd.OutOrStdout()
	if recordOutput != "" {
		f, err := os.Create(recordOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	} else if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		util.LogInfo("Recording to a terminal; redirect stdout or use --output to keep the trace")
	}

	writerOpts := []trace.WriterOption{trace.WithPrecision(cfg.Record.Precision)}
	if recordTab {
		writerOpts = append(writerOpts, trace.WithTabSeparator())
	}
	w := trace.NewWriter(out, writerOpts...)

	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	util.LogInfo("Recording",
		util.F("pin", cfg.InputPin), util.F("mode", cfg.Record.Mode), util.F("backend", cfg.Backend))

	rec := recorder.New(pin, w.Write, recorder.WithPollInterval(cfg.Record.PollInterval))
	if edgeMode {
		return rec.Watch(ctx, edges)
	}
	return rec.Run(ctx)
}
