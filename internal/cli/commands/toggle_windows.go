//go:build windows

package commands

import "os"

// notifyToggle returns a channel that never fires; there is no SIGUSR1 on Windows.
func notifyToggle() (<-chan os.Signal, func()) {
	return nil, func() {}
}
