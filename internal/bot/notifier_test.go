package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/tankbot/internal/protocol"
	"github.com/nfrund/tankbot/internal/pubsub"
)

func TestPubSubNotifier(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	notes := make(chan Notification, 4)
	ends := make(chan Termination, 1)
	require.NoError(t, pubsub.Listen(ctx, bus, NotificationEvent, func(_ context.Context, connID string, n Notification) error {
		assert.Equal(t, "conn-7", connID)
		notes <- n
		return nil
	}))
	require.NoError(t, pubsub.Listen(ctx, bus, TerminatedEvent, func(_ context.Context, _ string, term Termination) error {
		ends <- term
		return nil
	}))

	n := NewPubSubNotifier(bus, "conn-7")
	n.Notify(ctx, &protocol.RoundStartedEvent{RoundNumber: 4})
	n.Terminated(ctx, errors.New("lost"))

	select {
	case got := <-notes:
		assert.Equal(t, protocol.TypeRoundStartedEvent, got.Type)
		m, err := protocol.Decode(got.Frame)
		require.NoError(t, err)
		assert.Equal(t, &protocol.RoundStartedEvent{RoundNumber: 4}, m)
	case <-ctx.Done():
		t.Fatal("notification not delivered")
	}

	select {
	case term := <-ends:
		assert.False(t, term.Clean)
		assert.Equal(t, "lost", term.Error)
	case <-ctx.Done():
		t.Fatal("termination not delivered")
	}
}

func TestNotifiers_FanOut(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	ns := Notifiers{a, b}

	ns.Notify(context.Background(), &protocol.SkippedTurnEvent{TurnNumber: 1})
	ns.Terminated(context.Background(), nil)

	for _, n := range []*recordingNotifier{a, b} {
		assert.Equal(t, []protocol.Type{protocol.TypeSkippedTurnEvent}, n.messages)
		assert.True(t, n.ended)
	}
}
