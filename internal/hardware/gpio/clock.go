package gpio

import "time"

// Clock returns the current point on a monotonic timeline.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads CLOCK_MONOTONIC where available, the clock the kernel
// stamps GPIO edge events with.
type SystemClock struct{}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Duration

func (f ClockFunc) Now() time.Duration {
	return f()
}
