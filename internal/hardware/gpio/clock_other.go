//go:build !linux && !darwin && !freebsd

package gpio

import "time"

var processStart = time.Now()

func (SystemClock) Now() time.Duration {
	return time.Since(processStart)
}
