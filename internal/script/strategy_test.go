package script

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nfrund/tankbot/internal/protocol"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTick(round, turn int, events ...protocol.Event) *protocol.TickEventForBot {
	return &protocol.TickEventForBot{
		RoundNumber: round,
		TurnNumber:  turn,
		EnemyCount:  3,
		BotState:    protocol.BotState{Energy: 90, X: 100, Y: 200},
		Events:      events,
	}
}

func mustStrategy(t *testing.T, content string, opts ...Option) *Strategy {
	t.Helper()
	s, err := NewStrategy(NewScript("test.tengo", content, time.Now()), opts...)
	require.NoError(t, err)
	return s
}

func scriptErr(t *testing.T, err error) *ScriptError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScript)
	var se *ScriptError
	require.True(t, errors.As(err, &se))
	return se
}

func TestStrategy_DefaultScript(t *testing.T) {
	s, err := NewStrategy(DefaultScript())
	require.NoError(t, err)
	assert.Equal(t, SourceEmbedded, s.Script().Source)

	intent, err := s.Tick(context.Background(), newTick(1, 1))
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, 5.0, *intent.TurnRate)
	assert.Equal(t, 20.0, *intent.RadarTurnRate)
	assert.Nil(t, intent.Firepower)

	intent, err = s.Tick(context.Background(), newTick(1, 2, &protocol.ScannedBotEvent{TurnNumber: 2, ScannedBotID: 4}))
	require.NoError(t, err)
	require.NotNil(t, intent.Firepower)
	assert.Equal(t, 3.0, *intent.Firepower)
}

func TestStrategy_AbsentKeysStayAbsent(t *testing.T) {
	s := mustStrategy(t, `intent := {turnRate: 5}`)

	intent, err := s.Tick(context.Background(), newTick(1, 1))
	require.NoError(t, err)

	frame, err := protocol.Encode(intent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"BotIntent","turnRate":5}`, string(frame))
}

func TestStrategy_NoIntentSkipsTurn(t *testing.T) {
	s := mustStrategy(t, `x := tick.turnNumber`)

	intent, err := s.Tick(context.Background(), newTick(1, 1))
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestStrategy_SeesTick(t *testing.T) {
	s := mustStrategy(t, `
fmt := import("fmt")
intent := {}
if tick.turnNumber % 2 == 0 {
	intent.rescan = true
}
intent.stdOut = fmt.sprintf("%d/%d enemies=%d events=%d", tick.roundNumber, tick.turnNumber, tick.enemyCount, len(tick.events))
for ev in tick.events {
	if ev.type == "HitByBulletEvent" {
		intent.targetSpeed = 8.0
	}
}
`)

	intent, err := s.Tick(context.Background(), newTick(2, 7, &protocol.HitByBulletEvent{TurnNumber: 7, Damage: 4}))
	require.NoError(t, err)
	assert.Equal(t, "2/7 enemies=3 events=1", *intent.StdOut)
	assert.Equal(t, 8.0, *intent.TargetSpeed)
	assert.Nil(t, intent.Rescan)

	intent, err = s.Tick(context.Background(), newTick(2, 8))
	require.NoError(t, err)
	assert.True(t, *intent.Rescan)
	assert.Nil(t, intent.TargetSpeed)
}

func TestStrategy_MemorySurvivesTurns(t *testing.T) {
	s := mustStrategy(t, `
if is_undefined(memory.count) {
	memory.count = 0
}
memory.count += 1
intent := {stdOut: string(memory.count)}
`)
	ctx := context.Background()

	var out string
	for turn := 1; turn <= 3; turn++ {
		intent, err := s.Tick(ctx, newTick(1, turn))
		require.NoError(t, err)
		out = *intent.StdOut
	}
	assert.Equal(t, "3", out)

	s.Notify(ctx, &protocol.RoundStartedEvent{RoundNumber: 2})
	intent, err := s.Tick(ctx, newTick(2, 1))
	require.NoError(t, err)
	assert.Equal(t, "1", *intent.StdOut)
}

func TestStrategy_Errors(t *testing.T) {
	t.Run("compilation", func(t *testing.T) {
		_, err := NewStrategy(NewScript("bad.tengo", `intent := {`, time.Now()))
		se := scriptErr(t, err)
		assert.Equal(t, ErrorTypeCompilation, se.Type)
		assert.Equal(t, "bad.tengo", se.ScriptName)
	})

	t.Run("disallowed module", func(t *testing.T) {
		_, err := NewStrategy(NewScript("os.tengo", `os := import("os")`, time.Now()))
		assert.Equal(t, ErrorTypeCompilation, scriptErr(t, err).Type)
	})

	t.Run("runtime", func(t *testing.T) {
		s := mustStrategy(t, `x := 1 / (tick.turnNumber - 1)`)
		_, err := s.Tick(context.Background(), newTick(1, 1))
		assert.Equal(t, ErrorTypeExecution, scriptErr(t, err).Type)
	})

	t.Run("timeout", func(t *testing.T) {
		limits := GetDefaultSecurityLimits()
		limits.MaxExecutionTime = 10 * time.Millisecond
		s := mustStrategy(t, `for {}`, WithLimits(limits))
		_, err := s.Tick(context.Background(), newTick(1, 1))
		se := scriptErr(t, err)
		assert.Equal(t, ErrorTypeTimeout, se.Type)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unknown intent key", func(t *testing.T) {
		s := mustStrategy(t, `intent := {turnRat: 5}`)
		_, err := s.Tick(context.Background(), newTick(1, 1))
		assert.Equal(t, ErrorTypeInvalidIntent, scriptErr(t, err).Type)
	})

	t.Run("intent not a map", func(t *testing.T) {
		s := mustStrategy(t, `intent := 5`)
		_, err := s.Tick(context.Background(), newTick(1, 1))
		assert.Equal(t, ErrorTypeInvalidIntent, scriptErr(t, err).Type)
	})

	t.Run("mistyped intent value", func(t *testing.T) {
		s := mustStrategy(t, `intent := {firepower: "lots"}`)
		_, err := s.Tick(context.Background(), newTick(1, 1))
		assert.Equal(t, ErrorTypeInvalidIntent, scriptErr(t, err).Type)
	})
}

func TestStrategy_FailedLoadKeepsProgram(t *testing.T) {
	s := mustStrategy(t, `intent := {turnRate: 1}`)
	before := s.Script()

	err := s.Load(NewScript("test.tengo", `intent := {`, time.Now()))
	require.Error(t, err)
	assert.Same(t, before, s.Script())

	require.NoError(t, s.Load(NewScript("test.tengo", `intent := {turnRate: 2}`, time.Now())))
	intent, err := s.Tick(context.Background(), newTick(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2.0, *intent.TurnRate)
}

func TestStrategy_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := mustStrategy(t, `log("hello from turn " + string(tick.turnNumber))`, WithLogger(logger))

	_, err := s.Tick(context.Background(), newTick(1, 4))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `message="hello from turn 4"`)
	assert.Contains(t, buf.String(), "script=test.tengo")
}

func TestLoadScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bots/aggressive.tengo", []byte(`intent := {}`), 0o644))

	src, err := LoadScript(fs, "/bots/aggressive.tengo")
	require.NoError(t, err)
	assert.Equal(t, "aggressive.tengo", src.Name)
	assert.Equal(t, SourceExternal, src.Source)
	assert.Equal(t, checksum(`intent := {}`), src.Checksum)
	assert.False(t, src.LastModified.IsZero())

	_, err = LoadScript(fs, "/bots/missing.tengo")
	assert.Equal(t, ErrorTypeNotFound, scriptErr(t, err).Type)

	def, err := LoadOrDefault(fs, "")
	require.NoError(t, err)
	assert.Equal(t, SourceEmbedded, def.Source)
}
