package bot

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/tankbot/internal/protocol"
	"github.com/nfrund/tankbot/internal/pubsub"
)

// Notification is published for every informational message of a session.
type Notification struct {
	Type  protocol.Type   `json:"type"`
	Frame json.RawMessage `json:"frame"`
}

// Termination is published once when a session ends.
type Termination struct {
	Clean bool   `json:"clean"`
	Error string `json:"error,omitempty"`
}

var (
	NotificationEvent = pubsub.NewEvent[Notification]("bot.notification")
	TerminatedEvent   = pubsub.NewEvent[Termination]("bot.terminated")
)

// PubSubNotifier forwards session events to a pubsub bus so other parts of the program
// (the diagnostics server, a team coordinator) can follow the game.
type PubSubNotifier struct {
	pub    pubsub.Publisher
	connID string
}

func NewPubSubNotifier(pub pubsub.Publisher, connID string) *PubSubNotifier {
	return &PubSubNotifier{pub: pub, connID: connID}
}

func (n *PubSubNotifier) Notify(ctx context.Context, msg protocol.Message) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		slog.Warn("Failed to encode notification", "type", msg.MessageType(), "error", err)
		return
	}
	err = pubsub.Publish(ctx, n.pub, NotificationEvent, n.connID, Notification{Type: msg.MessageType(), Frame: frame})
	if err != nil {
		slog.Warn("Failed to publish notification", "type", msg.MessageType(), "error", err)
	}
}

func (n *PubSubNotifier) Terminated(ctx context.Context, err error) {
	t := Termination{Clean: err == nil}
	if err != nil {
		t.Error = err.Error()
	}
	if perr := pubsub.Publish(ctx, n.pub, TerminatedEvent, n.connID, t); perr != nil {
		slog.Warn("Failed to publish termination", "error", perr)
	}
}

// Notifiers fans out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, msg protocol.Message) {
	for _, n := range ns {
		n.Notify(ctx, msg)
	}
}

func (ns Notifiers) Terminated(ctx context.Context, err error) {
	for _, n := range ns {
		n.Terminated(ctx, err)
	}
}
