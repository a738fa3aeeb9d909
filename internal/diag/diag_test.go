package diag

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/tankbot/internal/bot"
	"github.com/nfrund/tankbot/internal/engine"
	"github.com/nfrund/tankbot/internal/metrics"
	"github.com/nfrund/tankbot/internal/msglog"
	"github.com/nfrund/tankbot/internal/protocol"
)

type fixedStatus bot.Status

func (s fixedStatus) Status() bot.Status { return bot.Status(s) }

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, New(Options{}).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestStatus(t *testing.T) {
	st := fixedStatus{
		ConnID:    "c1",
		SessionID: "s1",
		Phase:     engine.Active,
		PhaseName: engine.Active.String(),
		Round:     2,
		Turn:      17,
		Messages:  20,
		Ticks:     17,
		Intents:   15,
	}
	rec := get(t, New(Options{Status: st}).Handler(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"connId": "c1",
		"sessionId": "s1",
		"phase": "active",
		"round": 2,
		"turn": 17,
		"messages": 20,
		"ticks": 17,
		"intents": 15
	}`, rec.Body.String())

	rec = get(t, New(Options{}).Handler(), "/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessages(t *testing.T) {
	ring := msglog.NewRing(10)
	for i, frame := range []string{
		`{"type":"GameStartedEventForBot"}`,
		`{"type":"RoundStartedEvent","roundNumber":1}`,
		`{"type":"RoundEndedEventForBot"}`,
	} {
		require.NoError(t, ring.Append(msglog.Entry{
			Seq:        int64(i + 1),
			ReceivedAt: time.Unix(0, 0),
			Type:       protocol.Type("x"),
			Raw:        json.RawMessage(frame),
		}))
	}
	h := New(Options{Messages: ring}).Handler()

	rec := get(t, h, "/messages?n=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []struct {
		Seq   int64           `json:"seq"`
		Frame json.RawMessage `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Seq)
	assert.JSONEq(t, `{"type":"RoundEndedEventForBot"}`, string(got[1].Frame))

	rec = get(t, h, "/messages")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/messages?n=lots").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/messages?n=-1").Code)

	rec = get(t, h, "/messages?n=0")
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, New(Options{}).Handler(), "/messages").Code)
}

func TestMessages_RateLimited(t *testing.T) {
	h := New(Options{Messages: msglog.NewRing(1), MessagesRate: 2}).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/messages").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/messages").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/messages").Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	m.FrameReceived()

	rec := get(t, New(Options{Gatherer: reg}).Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tankbot_frames_received_total 1")

	assert.Equal(t, http.StatusNotFound, get(t, New(Options{}).Handler(), "/metrics").Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Options{}).Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
