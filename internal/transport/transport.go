// Package transport moves text frames between a bot and a Tank Royale server.
//
// A Channel knows nothing about the message model: it delivers one UTF-8 text frame per
// Receive and writes one per Send. Binary frames and control frames never surface.
package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConnectionClosed means the peer closed the connection, the stream ended or the
	// receiving context was cancelled. It is the normal way for a session to end.
	ErrConnectionClosed = errors.New("transport: connection closed")
	// ErrIOFailure matches every *IOError.
	ErrIOFailure = errors.New("transport: i/o failure")
)

// Frame is one text frame as it appeared on the wire.
type Frame []byte

// Channel is a bidirectional, ordered stream of text frames.
type Channel interface {
	// Receive blocks until the next text frame arrives.
	Receive(ctx context.Context) (Frame, error)
	// Send writes one text frame.
	Send(ctx context.Context, f Frame) error
	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// IOError wraps a transport failure that is not an orderly close.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIOFailure }

func closed(cause error) error {
	if cause == nil {
		return ErrConnectionClosed
	}
	return fmt.Errorf("%w: %w", ErrConnectionClosed, cause)
}
