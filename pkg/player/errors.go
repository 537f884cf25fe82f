package player

import "errors"

// Startup errors. All of them are terminal for a Player.
var (
	ErrNoAccess   = errors.New("can't access the log directory")
	ErrScan       = errors.New("error listing log files")
	ErrNoLogFiles = errors.New("no log files found")
)

// statusForError maps a terminal error to the lifecycle status reported for it.
func statusForError(err error) StatusKind {
	switch {
	case errors.Is(err, ErrNoAccess):
		return StatusNoAccess
	case errors.Is(err, ErrNoLogFiles):
		return StatusNoLogFiles
	default:
		return StatusScanError
	}
}
