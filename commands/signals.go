//go:build !windows

package commands

import (
	"context"
	"os/signal"

	"golang.org/x/sys/unix"
)

// interruptContext is cancelled on SIGINT or SIGTERM, the only way record
// and monitor end.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, unix.SIGINT, unix.SIGTERM)
}
