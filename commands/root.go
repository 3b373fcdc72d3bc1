package commands

import (
	"fmt"
	"path/filepath"

	"github.com/penwyp/go-gpio-trace/internal/config"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/penwyp/go-gpio-trace/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug   bool
	logFile string

	// Hardware selection
	configPath string
	backend    string
	chip       string

	// cfg is the merged configuration for the running command.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "go-gpio-trace",
		Short: "Record and replay a GPIO waveform",
		Long: `go-gpio-trace captures the waveform seen on a single GPIO input pin and
reproduces it on an output pin, e.g. to clone an IR or RF remote control.

A trace is plain text, one transition per line:
  <elapsed_seconds> <bit>
where elapsed is the time since the previous transition.

Examples:
  go-gpio-trace record > remote.trace             # Capture GPIO5 until Ctrl-C
  go-gpio-trace record --mode edge --pin 17       # Use kernel edge events
  go-gpio-trace replay remote.trace               # Play back on GPIO13
  go-gpio-trace inspect remote.trace -o json      # Summarize a capture
  go-gpio-trace monitor --changes-only            # Watch the raw input level`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	// openController is replaced in tests.
	openController = gpio.Open
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath,
		"Config file path")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", config.DefaultBackend,
		"GPIO backend (cdev, sim)")
	rootCmd.PersistentFlags().StringVar(&chip, "chip", config.DefaultChip,
		"GPIO chip name or path")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode (also logs to stderr)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogFile,
		"Log file path")
}

// setup loads configuration, applies explicit flags over it and starts the
// logger. It runs before every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	loaded, err := config.Load(util.ExpandPath(configPath), flags.Changed("config"))
	if err != nil {
		return err
	}
	cfg = loaded

	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("chip") {
		cfg.Chip = chip
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	path := util.ExpandPath(cfg.LogFile)
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:   logLevel,
		LogFile: path,
		Format:  util.LogFormat(cfg.LogFormat),
		Console: debug,
	}); err != nil {
		return err
	}

	util.LogDebug("Configuration loaded",
		util.F("command", cmd.Name()), util.F("backend", cfg.Backend), util.F("chip", cfg.Chip))
	return nil
}

func Execute() error {
	defer util.CloseLogger()
	return rootCmd.Execute()
}
