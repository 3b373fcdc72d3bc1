package replayer

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/util"
)

// Writer is the part of a pin the replayer needs.
type Writer interface {
	Write(level int) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Replayer drives an output pin through a trace.
type Replayer struct {
	pin      Writer
	sleep    Sleeper
	maxDelay time.Duration
}

type Option func(*Replayer)

// WithSleeper replaces the timer based sleep.
func WithSleeper(s Sleeper) Option {
	return func(r *Replayer) {
		r.sleep = s
	}
}

// WithMaxDelay replays any delay longer than d as zero. Zero disables the
// clamp.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Replayer) {
		r.maxDelay = d
	}
}

func New(pin Writer, opts ...Option) *Replayer {
	r := &Replayer{
		pin:   pin,
		sleep: Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Play replays t once. The first record is written without delay. If ctx is
// cancelled the remaining records are skipped and ctx.Err() is returned.
func (r *Replayer) Play(ctx context.Context, t trace.Trace) error {
	t = t.Normalized()
	start := time.Now()

	util.LogInfo("Replay started", util.F("records", len(t)), util.F("duration", t.Duration()))

	for i, rec := range t {
		delay := rec.Elapsed
		if r.maxDelay > 0 && delay > r.maxDelay {
			util.LogDebugf("Clamping delay of record %d from %v to 0", i, delay)
			delay = 0
		}

		if err := r.sleep(ctx, delay); err != nil {
			util.LogInfo("Replay interrupted", util.F("written", i))
			return err
		}
		if err := r.pin.Write(rec.Level); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	util.LogInfo("Replay finished", util.F("records", len(t)), util.F("took", time.Since(start)))
	return nil
}

// Sleep waits for d unless ctx ends first. Non-positive delays only check ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
