package channel

// -----------------------------------------------------------------------------
// Connection states. A channel owns at most one live transport and moves
// through these states under its own lock; there is no other transition path.
// -----------------------------------------------------------------------------

type State int

const (
	// StateClosed is the resting state: never connected, or explicitly
	// disconnected by the caller. Distinct from StateGivenUp.
	StateClosed State = iota

	// StateConnecting means a dial is pending. No second dial may start.
	StateConnecting

	// StateOpen means the transport completed its handshake and the read
	// loop is running.
	StateOpen

	// StateClosing is a short-lived state while an explicit disconnect
	// tears the transport down.
	StateClosing

	// StateRetrying means the transport dropped and a reconnect timer is
	// armed.
	StateRetrying

	// StateGivenUp means the retry ceiling was exceeded. Only an explicit
	// Connect() call leaves this state.
	StateGivenUp
)

// -----------------------------------------------------------------------------

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateRetrying:
		return "retrying"
	case StateGivenUp:
		return "given_up"
	default:
		return "unknown"
	}
}
