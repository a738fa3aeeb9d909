// Package engine is the protocol state machine of a bot connection.
//
// A Machine is fed one decoded message at a time and answers with an Action describing
// what the runtime loop must do next: reply, invoke the bot, notify the application, or
// stop. It performs no I/O and is owned by a single goroutine.
package engine

import (
	"github.com/nfrund/tankbot/internal/protocol"
)

// Identity is everything the bot tells the server about itself during the handshake.
type Identity struct {
	Bot    protocol.BotIdentity
	Team   *protocol.TeamIdentity
	Droid  bool
	Secret string
}

// Action is the outcome of one Step.
type Action struct {
	// Outbound must be encoded and sent before the next receive.
	Outbound protocol.Message
	// Tick must be answered by exactly one callback invocation.
	Tick *protocol.TickEventForBot
	// Notify is informational and is handed to the embedding application.
	Notify protocol.Message
	// Ignored is set for messages that were logged and dropped.
	Ignored bool
	// Terminal is set once the machine has reached Terminated.
	Terminal bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithStrictHandshake terminates the session when anything other than a ServerHandshake
// arrives first. By default such messages are reported and the machine keeps waiting.
func WithStrictHandshake() Option {
	return func(m *Machine) { m.strict = true }
}

// WithoutReadyReply stops the machine from answering GameStartedEventForBot with
// BotReady. Servers drop bots that do not report ready within the ready timeout.
func WithoutReadyReply() Option {
	return func(m *Machine) { m.noReady = true }
}

// Machine tracks the phase of one connection.
type Machine struct {
	identity Identity
	strict   bool
	noReady  bool

	phase     Phase
	sessionID string
	reason    error

	round    int
	turn     int
	haveTurn bool
}

// New returns a machine in AwaitingHandshake.
func New(identity Identity, opts ...Option) *Machine {
	m := &Machine{identity: identity, phase: AwaitingHandshake}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Phase() Phase { return m.phase }

// SessionID is the id assigned by the server, empty before the handshake.
func (m *Machine) SessionID() string { return m.sessionID }

// Turn returns the round and turn of the last tick seen.
func (m *Machine) Turn() (round, turn int) { return m.round, m.turn }

// Reason is the error passed to Close, if any.
func (m *Machine) Reason() error { return m.reason }

// Step applies msg to the machine. A non-nil error never invalidates the returned Action:
// a turn regression, for example, is reported yet the tick is still delivered.
func (m *Machine) Step(msg protocol.Message) (Action, error) {
	if m.phase == Terminated {
		return Action{Terminal: true}, ErrTerminated
	}
	t, ok := transitions[m.phase][classify(msg)]
	if !ok {
		return Action{}, m.unexpected(msg, "not allowed in this phase")
	}
	return t(m, msg)
}

// Close moves the machine to Terminated because the transport ended or the loop was told
// to stop. reason may be nil for an orderly stop.
func (m *Machine) Close(reason error) Action {
	if m.phase != Terminated {
		m.phase = Terminated
		m.reason = reason
	}
	return Action{Terminal: true}
}

func (m *Machine) unexpected(msg protocol.Message, reason string) *ProtocolError {
	return &ProtocolError{Phase: m.phase, Type: msg.MessageType(), Reason: reason}
}
