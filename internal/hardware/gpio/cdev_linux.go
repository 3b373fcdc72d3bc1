//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/penwyp/go-gpio-trace/internal/util"
	"github.com/warthog618/go-gpiocdev"
)

// CdevController drives lines through the Linux GPIO character device.
type CdevController struct {
	chip  string
	mu    sync.Mutex
	lines []*cdevPin
}

// NewCdev returns a controller for the named chip, e.g. "gpiochip0".
func NewCdev(chip string) (*CdevController, error) {
	return &CdevController{chip: chip}, nil
}

func (c *CdevController) Setup(offset int, dir Direction, opts ...SetupOption) (Pin, error) {
	cfg := newSetupConfig(opts)

	reqOpts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(cfg.Consumer)}

	p := &cdevPin{
		offset: offset,
		dir:    dir,
		done:   make(chan struct{}),
	}

	switch dir {
	case Input:
		reqOpts = append(reqOpts, gpiocdev.AsInput)
		if cfg.Edges {
			p.edges = make(chan Edge, cfg.EventQueue)
			reqOpts = append(reqOpts,
				gpiocdev.WithBothEdges,
				gpiocdev.WithEventHandler(p.handleEvent),
			)
			if cfg.Debounce > 0 {
				reqOpts = append(reqOpts, gpiocdev.WithDebounce(cfg.Debounce))
			}
		}
	case Output:
		if err := checkLevel(cfg.Initial); err != nil {
			return nil, err
		}
		reqOpts = append(reqOpts, gpiocdev.AsOutput(cfg.Initial))
	default:
		return nil, fmt.Errorf("unknown direction %v", dir)
	}

	line, err := gpiocdev.RequestLine(c.chip, offset, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s:%d as %s: %w", c.chip, offset, dir, err)
	}
	p.line = line

	c.mu.Lock()
	c.lines = append(c.lines, p)
	c.mu.Unlock()

	util.LogDebug("Configured GPIO line",
		util.F("chip", c.chip), util.F("offset", offset), util.F("direction", dir.String()),
		util.F("edges", cfg.Edges), util.F("debounce", cfg.Debounce))

	return p, nil
}

// Cleanup reverts outputs to inputs and releases every requested line.
func (c *CdevController) Cleanup() error {
	c.mu.Lock()
	lines := c.lines
	c.lines = nil
	c.mu.Unlock()

	var errs []error
	for _, p := range lines {
		if err := p.release(); err != nil {
			errs = append(errs, err)
		}
	}

	util.LogDebugf("Released %d GPIO lines on %s", len(lines), c.chip)
	return errors.Join(errs...)
}

type cdevPin struct {
	offset int
	dir    Direction
	line   *gpiocdev.Line
	edges  chan Edge
	done   chan struct{}
	once   sync.Once
}

func (p *cdevPin) Offset() int {
	return p.offset
}

func (p *cdevPin) Read() (int, error) {
	if p.dir != Input {
		return 0, ErrDirection
	}
	select {
	case <-p.done:
		return 0, ErrReleased
	default:
	}
	return p.line.Value()
}

func (p *cdevPin) Write(level int) error {
	if p.dir != Output {
		return ErrDirection
	}
	if err := checkLevel(level); err != nil {
		return err
	}
	select {
	case <-p.done:
		return ErrReleased
	default:
	}
	return p.line.SetValue(level)
}

func (p *cdevPin) Edges() <-chan Edge {
	return p.edges
}

func (p *cdevPin) handleEvent(evt gpiocdev.LineEvent) {
	level := 0
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = 1
	}
	select {
	case p.edges <- Edge{Level: level, Timestamp: evt.Timestamp}:
	case <-p.done:
	}
}

func (p *cdevPin) release() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		if p.dir == Output {
			if rerr := p.line.Reconfigure(gpiocdev.AsInput); rerr != nil {
				err = rerr
			}
		}
		if cerr := p.line.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}
