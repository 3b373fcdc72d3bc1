//go:build linux || darwin || freebsd

package gpio

import (
	"time"

	"golang.org/x/sys/unix"
)

func (SystemClock) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Since(processStart)
	}
	return time.Duration(ts.Nano())
}

var processStart = time.Now()
