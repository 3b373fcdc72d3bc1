package recorder

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/hardware/gpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	at    time.Duration
	level int
}

// scriptedPin replays samples; every Read moves the fake clock to the time of
// the sample it returns. When the script runs out it cancels the recording.
type scriptedPin struct {
	samples []sample
	next    int
	now     time.Duration
	cancel  context.CancelFunc
	err     error
}

func (p *scriptedPin) Read() (int, error) {
	if p.err != nil && p.next == len(p.samples) {
		return 0, p.err
	}
	if p.next >= len(p.samples) {
		p.cancel()
		return p.samples[len(p.samples)-1].level, nil
	}
	s := p.samples[p.next]
	p.next++
	p.now = s.at
	return s.level, nil
}

func (p *scriptedPin) Now() time.Duration {
	return p.now
}

func record(t *testing.T, samples []sample) (*Recorder, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pin := &scriptedPin{samples: samples, cancel: cancel}
	var buf bytes.Buffer
	r := New(pin, trace.NewWriter(&buf).Write, WithClock(pin))

	require.NoError(t, r.Run(ctx))
	return r, buf.String()
}

func TestRunEmitsElapsedSinceLastTransition(t *testing.T) {
	r, out := record(t, []sample{
		{at: 0, level: 0},
		{at: 300 * time.Millisecond, level: 1},
		{at: 900 * time.Millisecond, level: 0},
	})

	assert.Equal(t, "0.3 1\n0.6 0\n", out)
	assert.Equal(t, 2, r.Count())
}

func TestRunIgnoresUnchangedSamples(t *testing.T) {
	_, out := record(t, []sample{
		{at: 0, level: 1},
		{at: 100 * time.Millisecond, level: 1},
		{at: 200 * time.Millisecond, level: 1},
		{at: 250 * time.Millisecond, level: 0},
		{at: 400 * time.Millisecond, level: 0},
		{at: 500 * time.Millisecond, level: 1},
	})

	assert.Equal(t, "0.25 0\n0.25 1\n", out)
}

func TestRunRecordsShortGlitches(t *testing.T) {
	_, out := record(t, []sample{
		{at: 0, level: 0},
		{at: time.Millisecond, level: 1},
		{at: time.Millisecond + time.Microsecond, level: 0},
	})

	assert.Equal(t, "0.001 1\n0.000001 0\n", out)
}

func TestRunWithoutTransitionsEmitsNothing(t *testing.T) {
	r, out := record(t, []sample{{at: 0, level: 1}, {at: time.Second, level: 1}})

	assert.Empty(t, out)
	assert.Zero(t, r.Count())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := gpio.NewSimulator(nil)
	pin, err := sim.Setup(5, gpio.Input)
	require.NoError(t, err)

	var records []trace.Record
	r := New(pin, func(rec trace.Record) error {
		records = append(records, rec)
		return nil
	})

	assert.NoError(t, r.Run(ctx))
	assert.Empty(t, records)
}

func TestRunWithPollInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sim := gpio.NewSimulator(nil)
	pin, err := sim.Setup(5, gpio.Input)
	require.NoError(t, err)

	r := New(pin, func(trace.Record) error { return nil }, WithPollInterval(time.Millisecond))
	assert.NoError(t, r.Run(ctx))
}

func TestRunInitialReadError(t *testing.T) {
	pin := &scriptedPin{err: errors.New("permission denied")}
	r := New(pin, func(trace.Record) error { return nil }, WithClock(pin))

	err := r.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestRunSinkErrorStopsRecording(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pin := &scriptedPin{
		samples: []sample{{at: 0, level: 0}, {at: time.Millisecond, level: 1}, {at: 2 * time.Millisecond, level: 0}},
		cancel:  cancel,
	}
	calls := 0
	r := New(pin, func(trace.Record) error {
		calls++
		return errors.New("stdout closed")
	}, WithClock(pin))

	err := r.Run(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")
	assert.Equal(t, 1, calls)
}

func TestWatchUsesEdgeTimestamps(t *testing.T) {
	pin := &scriptedPin{samples: []sample{{at: 10 * time.Second, level: 0}}}
	var records []trace.Record
	r := New(pin, func(rec trace.Record) error {
		records = append(records, rec)
		return nil
	}, WithClock(pin))

	edges := make(chan gpio.Edge, 4)
	edges <- gpio.Edge{Level: 1, Timestamp: 10*time.Second + 300*time.Millisecond}
	edges <- gpio.Edge{Level: 1, Timestamp: 10*time.Second + 400*time.Millisecond}
	edges <- gpio.Edge{Level: 0, Timestamp: 10*time.Second + 900*time.Millisecond}
	close(edges)

	require.NoError(t, r.Watch(context.Background(), edges))

	assert.Equal(t, []trace.Record{
		{Elapsed: 300 * time.Millisecond, Level: 1},
		{Elapsed: 600 * time.Millisecond, Level: 0},
	}, records)
}

func TestWatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pin := &scriptedPin{samples: []sample{{at: 0, level: 0}}}
	r := New(pin, func(trace.Record) error { return nil }, WithClock(pin))

	assert.NoError(t, r.Watch(ctx, make(chan gpio.Edge)))
}

func TestWatchDropsEdgesQueuedBeforeStart(t *testing.T) {
	now := time.Duration(0)
	clock := gpio.ClockFunc(func() time.Duration { return now })
	sim := gpio.NewSimulator(clock)

	pin, err := sim.Setup(5, gpio.Input, gpio.WithEdges())
	require.NoError(t, err)

	now = time.Second
	require.NoError(t, sim.Pin(5).Drive(1))
	now = 2 * time.Second
	require.NoError(t, sim.Pin(5).Drive(0))
	now = 3 * time.Second

	// Both queued edges predate the initial sample; one fresh edge follows.
	edges := make(chan gpio.Edge, 3)
	queued := pin.(gpio.EdgeSource).Edges()
	edges <- <-queued
	edges <- <-queued
	edges <- gpio.Edge{Level: 1, Timestamp: 4 * time.Second}
	close(edges)

	var buf bytes.Buffer
	r := New(pin, trace.NewWriter(&buf).Write, WithClock(clock))
	require.NoError(t, r.Watch(context.Background(), edges))

	assert.Equal(t, "1 1\n", buf.String())
	parsed, err := trace.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, parsed.Levels())
}
