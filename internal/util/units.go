package util

import (
	"math"
	"time"
)

// SecondsToDuration converts fractional seconds to a Duration, rounding to
// the nearest nanosecond.
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// LevelName returns a human readable name for a pin level.
func LevelName(level int) string {
	if level == 0 {
		return "low"
	}
	return "high"
}
