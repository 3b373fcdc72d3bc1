package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBackend   = "cdev"
	DefaultChip      = "gpiochip0"
	DefaultInputPin  = 5
	DefaultOutputPin = 13
	DefaultLogFile   = "~/.go-gpio-trace/logs/app.log"
	DefaultPath      = "~/.go-gpio-trace/config.yaml"

	ModePoll = "poll"
	ModeEdge = "edge"
)

// Config holds settings shared by all commands. Command line flags override
// whatever is loaded from the file.
type Config struct {
	Backend   string `yaml:"backend"`
	Chip      string `yaml:"chip"`
	InputPin  int    `yaml:"input_pin"`
	OutputPin int    `yaml:"output_pin"`
	LogFile   string `yaml:"log_file"`
	LogFormat string `yaml:"log_format"`

	Record struct {
		Mode         string        `yaml:"mode"`
		PollInterval time.Duration `yaml:"poll_interval"`
		Debounce     time.Duration `yaml:"debounce"`
		Precision    int           `yaml:"precision"`
	} `yaml:"record"`

	Replay struct {
		MaxDelay time.Duration `yaml:"max_delay"`
	} `yaml:"replay"`
}

// Default returns the usual IR capture wiring: receiver on
// GPIO5, transmitter on GPIO13.
func Default() *Config {
	cfg := &Config{
		Backend:   DefaultBackend,
		Chip:      DefaultChip,
		InputPin:  DefaultInputPin,
		OutputPin: DefaultOutputPin,
		LogFile:   DefaultLogFile,
		LogFormat: "text",
	}
	cfg.Record.Mode = ModePoll
	cfg.Record.Precision = -1
	return cfg
}

// Load reads path over the defaults. A missing file is only an error when
// required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.InputPin < 0 {
		return fmt.Errorf("input_pin must be >= 0, got %d", c.InputPin)
	}
	if c.OutputPin < 0 {
		return fmt.Errorf("output_pin must be >= 0, got %d", c.OutputPin)
	}
	switch c.Record.Mode {
	case ModePoll, ModeEdge:
	default:
		return fmt.Errorf("record.mode must be %q or %q, got %q", ModePoll, ModeEdge, c.Record.Mode)
	}
	if c.Record.PollInterval < 0 || c.Record.Debounce < 0 || c.Replay.MaxDelay < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
