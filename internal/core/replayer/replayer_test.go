package replayer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/core/recorder"
	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	op    string
	value time.Duration
	level int
}

// timeline records sleeps and writes in the order they happen.
type timeline struct {
	steps    []step
	writeErr error
}

func (tl *timeline) Write(level int) error {
	if tl.writeErr != nil {
		return tl.writeErr
	}
	tl.steps = append(tl.steps, step{op: "write", level: level})
	return nil
}

func (tl *timeline) Sleep(ctx context.Context, d time.Duration) error {
	tl.steps = append(tl.steps, step{op: "sleep", value: d})
	return ctx.Err()
}

func TestPlayDocumentedScenario(t *testing.T) {
	tr, err := trace.Parse(strings.NewReader("1.234 1\n0.500 0\n0.750 1\n"))
	require.NoError(t, err)

	tl := &timeline{}
	r := New(tl, WithSleeper(tl.Sleep))

	require.NoError(t, r.Play(context.Background(), tr))

	assert.Equal(t, []step{
		{op: "sleep", value: 0},
		{op: "write", level: 1},
		{op: "sleep", value: 500 * time.Millisecond},
		{op: "write", level: 0},
		{op: "sleep", value: 750 * time.Millisecond},
		{op: "write", level: 1},
	}, tl.steps)
}

func TestPlayFirstDelayAlwaysZero(t *testing.T) {
	for _, first := range []time.Duration{0, time.Nanosecond, 3 * time.Hour} {
		tl := &timeline{}
		r := New(tl, WithSleeper(tl.Sleep))

		require.NoError(t, r.Play(context.Background(), trace.Trace{{Elapsed: first, Level: 0}}))
		require.NotEmpty(t, tl.steps)
		assert.Equal(t, step{op: "sleep", value: 0}, tl.steps[0])
	}
}

func TestPlayDoesNotModifyTrace(t *testing.T) {
	tr := trace.Trace{{Elapsed: time.Second, Level: 1}}
	tl := &timeline{}

	require.NoError(t, New(tl, WithSleeper(tl.Sleep)).Play(context.Background(), tr))
	assert.Equal(t, time.Second, tr[0].Elapsed)
}

func TestPlayEmptyTrace(t *testing.T) {
	tl := &timeline{}
	require.NoError(t, New(tl, WithSleeper(tl.Sleep)).Play(context.Background(), nil))
	assert.Empty(t, tl.steps)
}

func TestPlayMaxDelay(t *testing.T) {
	tr := trace.Trace{
		{Elapsed: 5 * time.Second, Level: 1},
		{Elapsed: 2 * time.Second, Level: 0},
		{Elapsed: 500 * time.Millisecond, Level: 1},
	}
	tl := &timeline{}
	r := New(tl, WithSleeper(tl.Sleep), WithMaxDelay(time.Second))

	require.NoError(t, r.Play(context.Background(), tr))

	var sleeps []time.Duration
	for _, s := range tl.steps {
		if s.op == "sleep" {
			sleeps = append(sleeps, s.value)
		}
	}
	assert.Equal(t, []time.Duration{0, 0, 500 * time.Millisecond}, sleeps)
}

func TestPlayCancelledStopsWriting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := trace.Trace{
		{Elapsed: 0, Level: 1},
		{Elapsed: time.Millisecond, Level: 0},
		{Elapsed: time.Millisecond, Level: 1},
	}

	var writes []int
	pin := writerFunc(func(level int) error {
		writes = append(writes, level)
		cancel()
		return nil
	})

	err := New(pin, WithSleeper(Sleep)).Play(ctx, tr)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, writes)
}

func TestPlayWriteErrorAborts(t *testing.T) {
	tl := &timeline{writeErr: errors.New("line busy")}
	err := New(tl, WithSleeper(tl.Sleep)).Play(context.Background(), trace.Trace{{Level: 1}, {Level: 0}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0")
	assert.Contains(t, err.Error(), "line busy")
}

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), 0))
}

type writerFunc func(int) error

func (f writerFunc) Write(level int) error {
	return f(level)
}

// scriptedInput changes level at fixed times; it doubles as the clock.
type scriptedInput struct {
	levels []int
	step   time.Duration
	i      int
	cancel context.CancelFunc
}

func (s *scriptedInput) Read() (int, error) {
	if s.i >= len(s.levels) {
		s.cancel()
		return s.levels[len(s.levels)-1], nil
	}
	level := s.levels[s.i]
	s.i++
	return level, nil
}

func (s *scriptedInput) Now() time.Duration {
	return time.Duration(s.i) * s.step
}

func TestRecordThenReplayReproducesLevels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := &scriptedInput{
		levels: []int{0, 0, 1, 1, 1, 0, 1, 0, 0, 1},
		step:   time.Millisecond,
		cancel: cancel,
	}
	var captured bytes.Buffer
	rec := recorder.New(input, trace.NewWriter(&captured).Write, recorder.WithClock(input))
	require.NoError(t, rec.Run(ctx))

	tr, err := trace.Parse(&captured)
	require.NoError(t, err)

	sim := gpio.NewSimulator(nil)
	out, err := sim.Setup(13, gpio.Output)
	require.NoError(t, err)

	noSleep := func(context.Context, time.Duration) error { return nil }
	require.NoError(t, New(out, WithSleeper(noSleep)).Play(context.Background(), tr))

	var replayed []int
	for _, w := range sim.Pin(13).History() {
		replayed = append(replayed, w.Level)
	}
	assert.Equal(t, []int{1, 0, 1, 0, 1}, replayed)
	assert.Equal(t, tr.Levels(), replayed)
}
