// Package bot runs the protocol loop of one bot connection.
//
// Run owns the connection for its whole lifetime: it receives frames, decodes them, feeds
// the state machine and invokes the bot's Handler exactly once per tick, sending the
// returned intent before it receives again.
package bot

import (
	"context"

	"github.com/nfrund/tankbot/internal/protocol"
)

// Handler decides what the bot does in a turn.
type Handler interface {
	// Tick returns the intent for the upcoming turn. A nil intent sends nothing, leaving
	// every actuator as it was. A non-nil error ends the session.
	Tick(ctx context.Context, tick *protocol.TickEventForBot) (*protocol.BotIntent, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, tick *protocol.TickEventForBot) (*protocol.BotIntent, error)

func (f HandlerFunc) Tick(ctx context.Context, tick *protocol.TickEventForBot) (*protocol.BotIntent, error) {
	return f(ctx, tick)
}

// Notifier is told about informational messages and about the end of the session. It is
// called on the loop goroutine and must return promptly.
type Notifier interface {
	Notify(ctx context.Context, msg protocol.Message)
	Terminated(ctx context.Context, err error)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, protocol.Message) {}
func (NopNotifier) Terminated(context.Context, error)        {}
