package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/penwyp/go-gpio-trace/internal/util"
)

// Reader is the part of a pin the recorder needs.
type Reader interface {
	Read() (int, error)
}

// Sink receives each transition as soon as it is detected.
type Sink func(trace.Record) error

// Recorder timestamps level changes on an input pin.
type Recorder struct {
	pin          Reader
	sink         Sink
	clock        gpio.Clock
	pollInterval time.Duration

	lastLevel int
	lastTime  time.Duration
	count     int
}

type Option func(*Recorder)

// WithClock replaces the monotonic system clock.
func WithClock(clock gpio.Clock) Option {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// WithPollInterval sleeps between samples. Zero busy-polls.
func WithPollInterval(d time.Duration) Option {
	return func(r *Recorder) {
		r.pollInterval = d
	}
}

func New(pin Reader, sink Sink, opts ...Option) *Recorder {
	r := &Recorder{
		pin:   pin,
		sink:  sink,
		clock: gpio.SystemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Count returns how many transitions have been emitted.
func (r *Recorder) Count() int {
	return r.count
}

// start samples the initial level. Nothing is emitted for it.
func (r *Recorder) start() error {
	level, err := r.pin.Read()
	if err != nil {
		return fmt.Errorf("failed to read initial level: %w", err)
	}
	r.lastLevel = level
	r.lastTime = r.clock.Now()
	r.count = 0
	util.LogDebug("Recording started", util.F("level", level))
	return nil
}

// observe emits a record if level differs from the last recorded level.
func (r *Recorder) observe(level int, at time.Duration) error {
	if level == r.lastLevel {
		return nil
	}
	rec := trace.Record{Elapsed: at - r.lastTime, Level: level}
	r.lastLevel = level
	r.lastTime = at
	r.count++
	if err := r.sink(rec); err != nil {
		return fmt.Errorf("failed to emit transition: %w", err)
	}
	return nil
}

// Run polls the pin until ctx is cancelled. Cancellation is the normal way
// to stop and returns nil.
func (r *Recorder) Run(ctx context.Context) error {
	if err := r.start(); err != nil {
		return err
	}

	var ticker *time.Ticker
	if r.pollInterval > 0 {
		ticker = time.NewTicker(r.pollInterval)
		defer ticker.Stop()
	}

	for {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return r.stopped()
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return r.stopped()
		}

		level, err := r.pin.Read()
		if err != nil {
			return fmt.Errorf("failed to read level: %w", err)
		}
		if level == r.lastLevel {
			continue
		}
		if err := r.observe(level, r.clock.Now()); err != nil {
			return err
		}
	}
}

// Watch consumes hardware edge events until ctx is cancelled or edges is
// closed. Edge timestamps must be on the same timeline as the recorder clock.
func (r *Recorder) Watch(ctx context.Context, edges <-chan gpio.Edge) error {
	if err := r.start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return r.stopped()
		case e, ok := <-edges:
			if !ok {
				return r.stopped()
			}
			// Edges queued before the initial sample predate it.
			if e.Timestamp < r.lastTime {
				continue
			}
			if err := r.observe(e.Level, e.Timestamp); err != nil {
				return err
			}
		}
	}
}

func (r *Recorder) stopped() error {
	util.LogInfo("Recording stopped", util.F("transitions", r.count))
	return nil
}
