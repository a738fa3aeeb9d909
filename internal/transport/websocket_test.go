package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/tankbot/internal/transport"
)

// fakeServer runs script against every upgraded connection.
func fakeServer(t *testing.T, script func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	// Wait for the client's half of the closing handshake.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestWebSocket_ReceiveSkipsBinaryFrames(t *testing.T) {
	url := fakeServer(t, func(conn *websocket.Conn) {
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"A"}`)))
		assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"B"}`)))
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := transport.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer ch.Close()

	f, err := ch.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"A"}`, string(f))

	f, err = ch.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"B"}`, string(f))

	_, err = ch.Receive(ctx)
	assert.ErrorIs(t, err, transport.ErrConnectionClosed)
	assert.NotErrorIs(t, err, transport.ErrIOFailure)
}

func TestWebSocket_SendIsOneTextFrame(t *testing.T) {
	got := make(chan string, 1)
	url := fakeServer(t, func(conn *websocket.Conn) {
		typ, data, err := conn.ReadMessage()
		if err == nil && typ == websocket.TextMessage {
			got <- string(data)
		}
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := transport.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send(ctx, transport.Frame(`{"type":"BotReady"}`)))

	select {
	case frame := <-got:
		assert.Equal(t, `{"type":"BotReady"}`, frame)
	case <-ctx.Done():
		t.Fatal("server never received the frame")
	}
}

func TestWebSocket_CancelledReceiveIsClosed(t *testing.T) {
	release := make(chan struct{})
	url := fakeServer(t, func(conn *websocket.Conn) {
		<-release
	})
	defer close(release)

	ch, err := transport.Dial(context.Background(), url, nil)
	require.NoError(t, err)
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = ch.Receive(ctx)
	assert.ErrorIs(t, err, transport.ErrConnectionClosed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWebSocket_CloseIsIdempotent(t *testing.T) {
	url := fakeServer(t, closeNormally)

	ch, err := transport.Dial(context.Background(), url, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		_ = ch.Close()
		_ = ch.Close()
	})
}

func TestDial_Failure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := transport.Dial(ctx, "ws://127.0.0.1:1/", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrIOFailure)

	var ioErr *transport.IOError
	assert.True(t, errors.As(err, &ioErr))
}
