package transport

import (
	"context"
	"sync"
)

// Replay is a Channel that plays back previously recorded inbound frames and keeps every
// frame sent to it. Once the recording is exhausted Receive reports ErrConnectionClosed.
type Replay struct {
	mu     sync.Mutex
	frames []Frame
	next   int
	sent   []Frame
	closed bool
}

// NewReplay returns a channel that yields frames in order.
func NewReplay(frames [][]byte) *Replay {
	r := &Replay{frames: make([]Frame, len(frames))}
	for i, f := range frames {
		r.frames[i] = append(Frame(nil), f...)
	}
	return r
}

func (r *Replay) Receive(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, closed(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.next >= len(r.frames) {
		return nil, closed(nil)
	}
	f := r.frames[r.next]
	r.next++
	return f, nil
}

func (r *Replay) Send(_ context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return closed(nil)
	}
	r.sent = append(r.sent, append(Frame(nil), f...))
	return nil
}

func (r *Replay) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Sent returns the frames written so far.
func (r *Replay) Sent() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.sent...)
}

// Remaining reports how many recorded frames have not been received yet.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames) - r.next
}
