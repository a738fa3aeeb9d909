package msglog

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/tankbot/internal/protocol"
)

func entry(seq int64, frame string) Entry {
	msg, _ := protocol.Decode([]byte(frame))
	var typ protocol.Type
	if msg != nil {
		typ = msg.MessageType()
	}
	return Entry{Seq: seq, ConnID: "c1", ReceivedAt: time.Unix(1700000000, 0), Type: typ, Raw: []byte(frame), Message: msg}
}

func TestLog_AppendInOrder(t *testing.T) {
	l := NewLog()
	require.NoError(t, l.Append(entry(1, `{"type":"GameAbortedEvent"}`)))
	require.NoError(t, l.Append(entry(2, `{"type":"Future"}`)))

	assert.Equal(t, 2, l.Len())
	got := l.Entries()
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, protocol.Type("Future"), got[1].Type)

	got[0].Seq = 99
	assert.Equal(t, int64(1), l.Entries()[0].Seq, "Entries returns a copy")
}

func TestSynchronized_ConcurrentReaders(t *testing.T) {
	s := NewSynchronized(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.Tail(5)
			_ = s.Len()
		}
	}()
	for i := int64(1); i <= 100; i++ {
		require.NoError(t, s.Append(entry(i, `{"type":"GameAbortedEvent"}`)))
	}
	wg.Wait()

	assert.Equal(t, 100, s.Len())
	tail := s.Tail(3)
	require.Len(t, tail, 3)
	assert.Equal(t, int64(98), tail[0].Seq)
	assert.Equal(t, int64(100), tail[2].Seq)
	assert.Len(t, s.Tail(500), 100)
	assert.Empty(t, s.Tail(0))
}

type failingSink struct{ err error }

func (f failingSink) Append(Entry) error { return f.err }

func TestTee(t *testing.T) {
	a, b := NewLog(), NewLog()
	boom := errors.New("disk full")
	sink := Tee(a, nil, failingSink{boom}, b)

	err := sink.Append(entry(1, `{"type":"GameAbortedEvent"}`))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len(), "a failing sink does not starve the rest")
}

func TestRecorder_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	rec, err := NewRecorder(fs, "/recordings/game.jsonl")
	require.NoError(t, err)

	frames := []string{
		`{"type":"ServerHandshake","sessionId":"abc","name":"Srv","variant":"v1","version":"1.0","gameTypes":["melee"]}`,
		`{"type":"RoundStartedEvent","roundNumber":1}`,
		`{"type":"Future","payload":{"nested":[1,2,3]}}`,
	}
	for i, f := range frames {
		require.NoError(t, rec.Append(entry(int64(i+1), f)))
	}
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())
	assert.Error(t, rec.Append(entry(4, frames[0])))

	got, err := ReadFrames(fs, "/recordings/game.jsonl")
	require.NoError(t, err)
	require.Len(t, got, len(frames))
	for i, f := range frames {
		assert.JSONEq(t, f, string(got[i]))
	}
}

func TestReadFrames_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := ReadFrames(fs, "/nope.jsonl")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.jsonl", []byte("{\"seq\":1,\"frame\":{}}\nnot json\n"), 0o644))
	_, err = ReadFrames(fs, "/bad.jsonl")
	assert.ErrorContains(t, err, "line 2")
}

func TestRing(t *testing.T) {
	r := NewRing(3)
	assert.Empty(t, r.Tail(5))

	for i := int64(1); i <= 2; i++ {
		require.NoError(t, r.Append(entry(i, `{"type":"GameAbortedEvent"}`)))
	}
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []int64{1, 2}, seqs(r.Tail(5)))

	for i := int64(3); i <= 7; i++ {
		require.NoError(t, r.Append(entry(i, `{"type":"GameAbortedEvent"}`)))
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int64{5, 6, 7}, seqs(r.Tail(3)))
	assert.Equal(t, []int64{6, 7}, seqs(r.Tail(2)))
	assert.Nil(t, r.Tail(0))
}

func TestEntry_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(entry(4, `{"type":"RoundStartedEvent","roundNumber":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"seq": 4,
		"connId": "c1",
		"receivedAt": "2023-11-14T22:13:20Z",
		"type": "RoundStartedEvent",
		"frame": {"type":"RoundStartedEvent","roundNumber":2}
	}`, string(b))
}

func seqs(entries []Entry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Seq)
	}
	return out
}
