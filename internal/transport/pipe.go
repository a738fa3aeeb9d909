package transport

import (
	"context"
	"sync"
)

const pipeBuffer = 64

// PipeEnd is one side of an in-memory channel pair.
type PipeEnd struct {
	in   <-chan Frame
	out  chan<- Frame
	done chan struct{}
	once *sync.Once
}

// Pipe returns two connected channel ends. Frames sent on one are received on the other in
// order. Closing either end closes both; frames already buffered are still delivered.
func Pipe() (*PipeEnd, *PipeEnd) {
	ab := make(chan Frame, pipeBuffer)
	ba := make(chan Frame, pipeBuffer)
	done := make(chan struct{})
	once := &sync.Once{}
	return &PipeEnd{in: ba, out: ab, done: done, once: once},
		&PipeEnd{in: ab, out: ba, done: done, once: once}
}

// Receive returns the next frame from the other end.
func (p *PipeEnd) Receive(ctx context.Context) (Frame, error) {
	select {
	case f := <-p.in:
		return f, nil
	default:
	}
	select {
	case f := <-p.in:
		return f, nil
	case <-p.done:
		select {
		case f := <-p.in:
			return f, nil
		default:
			return nil, closed(nil)
		}
	case <-ctx.Done():
		return nil, closed(ctx.Err())
	}
}

// Send copies f to the other end.
func (p *PipeEnd) Send(ctx context.Context, f Frame) error {
	select {
	case <-p.done:
		return closed(nil)
	default:
	}
	cp := append(Frame(nil), f...)
	select {
	case p.out <- cp:
		return nil
	case <-p.done:
		return closed(nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes both ends.
func (p *PipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
