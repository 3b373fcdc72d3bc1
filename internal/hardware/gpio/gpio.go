// Package gpio is the hardware boundary of the tool: pin configuration,
// level read/write, edge notification and cleanup.
package gpio

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsupported is returned when a backend is not available on this host.
	ErrUnsupported = errors.New("gpio backend not supported on this platform")
	// ErrDirection is returned when reading an output or writing an input.
	ErrDirection = errors.New("operation not valid for pin direction")
	// ErrReleased is returned when using a pin after Cleanup.
	ErrReleased = errors.New("pin has been released")
)

// Direction of a pin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Pin is a configured line.
type Pin interface {
	Offset() int
	Read() (int, error)
	Write(level int) error
}

// Edge is a level change reported by the hardware. Timestamp is on the same
// monotonic timeline as SystemClock.
type Edge struct {
	Level     int
	Timestamp time.Duration
}

// EdgeSource is implemented by pins set up with WithEdges.
type EdgeSource interface {
	Edges() <-chan Edge
}

// Controller owns the pin configuration of the process.
type Controller interface {
	Setup(offset int, dir Direction, opts ...SetupOption) (Pin, error)
	// Cleanup reverts every configured pin and releases it.
	Cleanup() error
}

// SetupConfig collects SetupOption values. Backends ignore what they cannot
// honour.
type SetupConfig struct {
	Initial    int
	Edges      bool
	Debounce   time.Duration
	EventQueue int
	Consumer   string
}

type SetupOption func(*SetupConfig)

// WithInitial sets the level an output is driven to when configured.
func WithInitial(level int) SetupOption {
	return func(c *SetupConfig) {
		c.Initial = level
	}
}

// WithEdges requests edge notification on an input. The pin then implements
// EdgeSource.
func WithEdges() SetupOption {
	return func(c *SetupConfig) {
		c.Edges = true
	}
}

// WithDebounce asks the backend to filter edges shorter than d.
func WithDebounce(d time.Duration) SetupOption {
	return func(c *SetupConfig) {
		c.Debounce = d
	}
}

// WithConsumer labels the line request, visible in tools such as gpioinfo.
func WithConsumer(name string) SetupOption {
	return func(c *SetupConfig) {
		c.Consumer = name
	}
}

const defaultEventQueue = 1024

func newSetupConfig(opts []SetupOption) SetupConfig {
	cfg := SetupConfig{
		EventQueue: defaultEventQueue,
		Consumer:   "go-gpio-trace",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func checkLevel(level int) error {
	if level != 0 && level != 1 {
		return fmt.Errorf("invalid level %d: must be 0 or 1", level)
	}
	return nil
}
