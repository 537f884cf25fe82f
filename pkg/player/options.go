package player

import "go.uber.org/zap"

// Default channel buffer sizes.
const (
	DefaultDeltaBuffer  = 16
	DefaultStatusBuffer = 64
)

// MaxPendingStatus bounds the lifecycle statuses queued behind an unread status channel.
const MaxPendingStatus = 64

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger. Decode failures are logged at debug level.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records replay metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Player) {
		p.metrics = m
	}
}

// WithBuffers sets the delta and status channel capacities.
// The status buffer is always at least 1.
func WithBuffers(deltas, status int) Option {
	return func(p *Player) {
		if deltas >= 0 {
			p.deltaBuffer = deltas
		}
		if status >= 1 {
			p.statusBuffer = status
		}
	}
}
