package trace

import (
	"fmt"
	"time"
)

// Record is a single transition: the time since the previous transition and
// the level the pin moved to.
type Record struct {
	Elapsed time.Duration
	Level   int
}

// Seconds returns Elapsed as fractional seconds.
func (r Record) Seconds() float64 {
	return r.Elapsed.Seconds()
}

func (r Record) String() string {
	return fmt.Sprintf("%s %d", FormatSeconds(r.Elapsed, -1), r.Level)
}

// Trace is an ordered list of records. Index order is chronological order.
type Trace []Record

// Normalized returns a copy of the trace whose first record has a zero delay.
// The first elapsed value of a recording is measured from process start, not
// from a previous edge, and must never be replayed as a delay.
func (t Trace) Normalized() Trace {
	if len(t) == 0 {
		return Trace{}
	}
	out := make(Trace, len(t))
	copy(out, t)
	out[0].Elapsed = 0
	return out
}

// Levels returns the level of every record in order.
func (t Trace) Levels() []int {
	levels := make([]int, len(t))
	for i, r := range t {
		levels[i] = r.Level
	}
	return levels
}

// Duration returns the sum of all delays after normalization, i.e. how long a
// replay of the trace takes.
func (t Trace) Duration() time.Duration {
	var total time.Duration
	for i, r := range t {
		if i == 0 {
			continue
		}
		total += r.Elapsed
	}
	return total
}

// ValidLevel reports whether level is a logic level (0 or 1).
func ValidLevel(level int) bool {
	return level == 0 || level == 1
}
