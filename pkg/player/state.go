package player

// State is the lifecycle state of a Player.
type State int32

const (
	StateInitialising State = iota
	StateScanning
	StatePlaying
	StateErrored
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitialising:
		return "initialising"
	case StateScanning:
		return "scanning"
	case StatePlaying:
		return "playing"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateErrored || s == StateClosed
}
