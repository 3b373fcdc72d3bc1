package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/util"
)

// Write is one level written to a simulated output.
type Write struct {
	Level int
	At    time.Duration
}

// Simulator is an in-memory Controller. Outputs record every write; inputs
// return whatever level was last driven with Drive.
type Simulator struct {
	clock Clock

	mu      sync.Mutex
	pins    map[int]*SimPin
	cleaned bool
}

// NewSimulator returns a simulator that timestamps writes with clock. A nil
// clock uses SystemClock.
func NewSimulator(clock Clock) *Simulator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Simulator{
		clock: clock,
		pins:  make(map[int]*SimPin),
	}
}

func (s *Simulator) Setup(offset int, dir Direction, opts ...SetupOption) (Pin, error) {
	cfg := newSetupConfig(opts)
	if dir == Output {
		if err := checkLevel(cfg.Initial); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pins[offset]; ok {
		return nil, fmt.Errorf("simulated pin %d already configured", offset)
	}

	p := &SimPin{
		sim:    s,
		offset: offset,
		dir:    dir,
		level:  cfg.Initial,
	}
	if dir == Input && cfg.Edges {
		p.edges = make(chan Edge, cfg.EventQueue)
	}
	s.pins[offset] = p
	s.cleaned = false

	util.LogDebug("Configured simulated pin", util.F("offset", offset), util.F("direction", dir.String()))
	return p, nil
}

// Cleanup releases every pin. Released pins reject further reads and writes.
func (s *Simulator) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pins {
		p.mu.Lock()
		p.released = true
		p.mu.Unlock()
	}
	s.cleaned = true
	util.LogDebugf("Released %d simulated pins", len(s.pins))
	return nil
}

// CleanedUp reports whether Cleanup ran after the last Setup.
func (s *Simulator) CleanedUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleaned
}

// Pin returns the simulated pin at offset, or nil.
func (s *Simulator) Pin(offset int) *SimPin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pins[offset]
}

// SimPin is a simulated line.
type SimPin struct {
	sim    *Simulator
	offset int
	dir    Direction

	mu       sync.Mutex
	level    int
	history  []Write
	edges    chan Edge
	released bool
}

func (p *SimPin) Offset() int {
	return p.offset
}

func (p *SimPin) Read() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return 0, ErrReleased
	}
	if p.dir != Input {
		return 0, ErrDirection
	}
	return p.level, nil
}

func (p *SimPin) Write(level int) error {
	if err := checkLevel(level); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return ErrReleased
	}
	if p.dir != Output {
		return ErrDirection
	}
	p.level = level
	p.history = append(p.history, Write{Level: level, At: p.sim.clock.Now()})
	util.LogDebug("Simulated write", util.F("offset", p.offset), util.F("level", util.LevelName(level)))
	return nil
}

// Drive sets the level an input reports, emitting an edge when it changes.
func (p *SimPin) Drive(level int) error {
	if err := checkLevel(level); err != nil {
		return err
	}

	p.mu.Lock()
	if p.dir != Input {
		p.mu.Unlock()
		return ErrDirection
	}
	changed := p.level != level
	p.level = level
	edges := p.edges
	p.mu.Unlock()

	// Send unlocked so a full queue never blocks Read.
	if changed && edges != nil {
		edges <- Edge{Level: level, Timestamp: p.sim.clock.Now()}
	}
	return nil
}

func (p *SimPin) Edges() <-chan Edge {
	return p.edges
}

// Level returns the current level regardless of direction.
func (p *SimPin) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// History returns a copy of every write made to an output.
func (p *SimPin) History() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Write, len(p.history))
	copy(out, p.history)
	return out
}
