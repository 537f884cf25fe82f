package player

import (
	"fmt"
	"path/filepath"
)

// StatusKind tells lifecycle statuses apart from progress reports.
type StatusKind int

const (
	StatusProgress StatusKind = iota
	StatusInitialising
	StatusNoLogFiles
	StatusNoAccess
	StatusScanError
	StatusStopped
)

var lifecycleMessages = map[StatusKind]string{
	StatusInitialising: "Initialising...",
	StatusNoLogFiles:   "No logfiles found in the given folder",
	StatusNoAccess:     "Can't access the folder with the log files",
	StatusScanError:    "An error occured",
	StatusStopped:      "Log replay stopped",
}

// String returns the kind name.
func (k StatusKind) String() string {
	switch k {
	case StatusProgress:
		return "progress"
	case StatusInitialising:
		return "initialising"
	case StatusNoLogFiles:
		return "no_log_files"
	case StatusNoAccess:
		return "no_access"
	case StatusScanError:
		return "scan_error"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is a message on the status channel. File, Count and RateHz are only set for progress.
type Status struct {
	Kind   StatusKind
	File   string
	Count  int
	RateHz float64
}

// IsLifecycle reports whether s is one of the fixed lifecycle messages.
func (s Status) IsLifecycle() bool {
	return s.Kind != StatusProgress
}

// IsError reports whether s announces a terminal error.
func (s Status) IsError() bool {
	switch s.Kind {
	case StatusNoLogFiles, StatusNoAccess, StatusScanError:
		return true
	}
	return false
}

// String renders the human-readable status line.
func (s Status) String() string {
	if s.Kind == StatusProgress {
		return fmt.Sprintf("Deltas replayed: %d from file %s; rate: ~%.2f Hz",
			s.Count, filepath.Base(s.File), s.RateHz)
	}
	if msg, ok := lifecycleMessages[s.Kind]; ok {
		return msg
	}
	return s.Kind.String()
}
