// Package msglog keeps the ordered record of inbound messages a bot connection accepted.
package msglog

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nfrund/tankbot/internal/protocol"
)

// Entry is one accepted inbound frame. Unrecognized messages are entries too.
type Entry struct {
	Seq        int64
	ConnID     string
	ReceivedAt time.Time
	Type       protocol.Type
	Raw        json.RawMessage
	Message    protocol.Message
}

// Sink receives entries in arrival order.
type Sink interface {
	Append(Entry) error
}

// Log is an append-only in-memory log. It is not safe for concurrent use; wrap it with
// NewSynchronized when another goroutine reads it.
type Log struct {
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Append(e Entry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of the log.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Synchronized guards a Log for concurrent readers such as the diagnostics server.
type Synchronized struct {
	mu  sync.RWMutex
	log *Log
}

func NewSynchronized(l *Log) *Synchronized {
	if l == nil {
		l = NewLog()
	}
	return &Synchronized{log: l}
}

func (s *Synchronized) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Append(e)
}

func (s *Synchronized) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Len()
}

func (s *Synchronized) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Entries()
}

// Tail returns up to n of the most recent entries, oldest first.
func (s *Synchronized) Tail(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.log.entries
	if n <= 0 {
		return nil
	}
	if n > len(all) {
		n = len(all)
	}
	return append([]Entry(nil), all[len(all)-n:]...)
}

type tee []Sink

// Tee returns a Sink that appends every entry to each of sinks in order. Nil sinks are
// skipped. Errors from all sinks are joined.
func Tee(sinks ...Sink) Sink {
	t := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	return t
}

func (t tee) Append(e Entry) error {
	var errs []error
	for _, s := range t {
		if err := s.Append(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ring keeps only the most recent entries. It is safe for concurrent use and is what a
// long-running bot should tail instead of an unbounded Log.
type Ring struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewRing returns a ring holding at most capacity entries.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{entries: make([]Entry, capacity)}
}

func (r *Ring) Append(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}

// Tail returns up to n of the most recent entries, oldest first.
func (r *Ring) Tail(n int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	size := r.next
	if r.full {
		size = len(r.entries)
	}
	if n <= 0 {
		return nil
	}
	if n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	start := (r.next - n + len(r.entries)) % len(r.entries)
	for i := 0; i < n; i++ {
		out = append(out, r.entries[(start+i)%len(r.entries)])
	}
	return out
}
