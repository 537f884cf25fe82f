//go:build !windows

package commands

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyToggle delivers SIGUSR1, which toggles playback.
func notifyToggle() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	return ch, func() { signal.Stop(ch) }
}
