package engine

// Phase is the connection-lifetime state of a bot session.
type Phase int

const (
	// AwaitingHandshake is the initial phase, before the server has introduced itself.
	AwaitingHandshake Phase = iota

	// Active follows a successful handshake; ticks are answered with intents.
	Active

	// Terminated is final. No further message is processed.
	Terminated
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case AwaitingHandshake:
		return "awaiting_handshake"
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}
