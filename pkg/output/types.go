// Package output renders played deltas, statuses and session summaries.
package output

import (
	"time"
)

// Summary describes a finished play session.
type Summary struct {
	// Directory is the replayed log directory.
	Directory string `json:"directory"`

	// Files lists the log files in the replay set.
	Files []string `json:"files"`

	// RateHz is the configured rate after normalization.
	RateHz float64 `json:"rate_hz"`

	// Deltas is how many deltas were received from the player.
	Deltas int `json:"deltas"`

	// Filtered is how many of them were rejected by the filter.
	Filtered int `json:"filtered"`

	// WebhookFailures counts failed webhook deliveries.
	WebhookFailures int `json:"webhook_failures"`

	// Error is the player's terminal error, if any.
	Error string `json:"error,omitempty"`

	// StartedAt is when playback started.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the session ran.
	Duration time.Duration `json:"duration"`
}

// Forwarded returns the number of deltas that passed the filter.
func (s *Summary) Forwarded() int {
	return s.Deltas - s.Filtered
}

// Failed reports whether the player stopped on an error.
func (s *Summary) Failed() bool {
	return s.Error != ""
}
