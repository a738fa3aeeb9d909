package msglog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/nfrund/tankbot/internal/protocol"
)

// record is one line of a recording file.
type record struct {
	Seq        int64           `json:"seq"`
	ConnID     string          `json:"connId,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Type       protocol.Type   `json:"type"`
	Frame      json.RawMessage `json:"frame"`
}

func toRecord(e Entry) record {
	return record{
		Seq:        e.Seq,
		ConnID:     e.ConnID,
		ReceivedAt: e.ReceivedAt.UTC(),
		Type:       e.Type,
		Frame:      e.Raw,
	}
}

// MarshalJSON encodes an entry in the same shape as a recording line.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(toRecord(e))
}

// Recorder writes entries as JSON lines so a session can be replayed later.
type Recorder struct {
	mu   sync.Mutex
	file afero.File
	enc  *json.Encoder
}

// NewRecorder creates (or truncates) path on fs.
func NewRecorder(fs afero.Fs, path string) (*Recorder, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("msglog: create directory: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("msglog: open recording: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &Recorder{file: f, enc: enc}, nil
}

func (r *Recorder) Append(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return fmt.Errorf("msglog: recorder closed")
	}
	return r.enc.Encode(toRecord(e))
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadFrames loads the frames of a recording in order.
func ReadFrames(fs afero.Fs, path string) ([][]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msglog: open recording: %w", err)
	}
	defer f.Close()

	var frames [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("msglog: %s line %d: %w", path, line, err)
		}
		frames = append(frames, []byte(rec.Frame))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("msglog: read recording: %w", err)
	}
	return frames, nil
}
