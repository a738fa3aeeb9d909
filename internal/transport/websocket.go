package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// DefaultReadLimit bounds a single inbound frame. Ticks in crowded melee games are well
// above the library default of 32 KiB.
const DefaultReadLimit = 1 << 20

// DialOptions configures Dial. The zero value is usable.
type DialOptions struct {
	// HTTPClient is used for the opening handshake, e.g. to supply TLS settings for wss://.
	HTTPClient *http.Client
	Header     http.Header
	ReadLimit  int64
	Logger     *slog.Logger
}

// WebSocket is a Channel over a single WebSocket connection.
type WebSocket struct {
	conn   *websocket.Conn
	logger *slog.Logger

	closeOnce sync.Once
}

// Dial opens a connection to uri. There is no retry; a failed dial returns an *IOError.
func Dial(ctx context.Context, uri string, opts *DialOptions) (*WebSocket, error) {
	if opts == nil {
		opts = &DialOptions{}
	}
	conn, _, err := websocket.Dial(ctx, uri, &websocket.DialOptions{
		HTTPClient: opts.HTTPClient,
		HTTPHeader: opts.Header,
	})
	if err != nil {
		return nil, &IOError{Op: "dial " + uri, Err: err}
	}

	limit := opts.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	conn.SetReadLimit(limit)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{conn: conn, logger: logger.With("component", "transport")}, nil
}

// Receive returns the next text frame. Binary frames are dropped.
func (w *WebSocket) Receive(ctx context.Context) (Frame, error) {
	for {
		typ, data, err := w.conn.Read(ctx)
		if err != nil {
			return nil, w.mapError(ctx, "read", err)
		}
		if typ != websocket.MessageText {
			w.logger.Debug("Skipping non-text frame", "type", typ.String(), "size", len(data))
			continue
		}
		return data, nil
	}
}

// Send writes f as a single text frame.
func (w *WebSocket) Send(ctx context.Context, f Frame) error {
	if err := w.conn.Write(ctx, websocket.MessageText, f); err != nil {
		return w.mapError(ctx, "write", err)
	}
	return nil
}

// Close performs the closing handshake. Errors from an already dead connection are ignored.
func (w *WebSocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.conn.Close(websocket.StatusNormalClosure, "bot shutting down")
		if err != nil && isClosedErr(err) {
			err = nil
		}
	})
	return err
}

func (w *WebSocket) mapError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return closed(ctx.Err())
	}
	if isClosedErr(err) {
		w.logger.Debug("Connection closed by peer", "op", op, "status", websocket.CloseStatus(err))
		return closed(nil)
	}
	return &IOError{Op: op, Err: err}
}

func isClosedErr(err error) bool {
	if websocket.CloseStatus(err) != -1 {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}
