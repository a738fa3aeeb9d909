package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

type factory func() Message

var eventFactories = map[Type]factory{
	TypeSkippedTurnEvent:     func() Message { return new(SkippedTurnEvent) },
	TypeBotDeathEvent:        func() Message { return new(BotDeathEvent) },
	TypeBotHitBotEvent:       func() Message { return new(BotHitBotEvent) },
	TypeBotHitWallEvent:      func() Message { return new(BotHitWallEvent) },
	TypeBulletFiredEvent:     func() Message { return new(BulletFiredEvent) },
	TypeBulletHitBotEvent:    func() Message { return new(BulletHitBotEvent) },
	TypeBulletHitBulletEvent: func() Message { return new(BulletHitBulletEvent) },
	TypeBulletHitWallEvent:   func() Message { return new(BulletHitWallEvent) },
	TypeHitByBulletEvent:     func() Message { return new(HitByBulletEvent) },
	TypeScannedBotEvent:      func() Message { return new(ScannedBotEvent) },
	TypeTeamMessageEvent:     func() Message { return new(TeamMessageEvent) },
	TypeWonRoundEvent:        func() Message { return new(WonRoundEvent) },
}

var messageFactories = func() map[Type]factory {
	m := map[Type]factory{
		TypeBotHandshake:        func() Message { return new(BotHandshake) },
		TypeControllerHandshake: func() Message { return new(ControllerHandshake) },
		TypeObserverHandshake:   func() Message { return new(ObserverHandshake) },
		TypeServerHandshake:     func() Message { return new(ServerHandshake) },

		TypeBotReady:        func() Message { return new(BotReady) },
		TypeBotIntent:       func() Message { return new(BotIntent) },
		TypeBotInfo:         func() Message { return new(BotInfo) },
		TypeBotListUpdate:   func() Message { return new(BotListUpdate) },
		TypeChangeTps:       func() Message { return new(ChangeTps) },
		TypeTpsChangedEvent: func() Message { return new(TpsChangedEvent) },
		TypeStartGame:       func() Message { return new(StartGame) },
		TypeStopGame:        func() Message { return new(StopGame) },
		TypePauseGame:       func() Message { return new(PauseGame) },
		TypeResumeGame:      func() Message { return new(ResumeGame) },
		TypeNextTurn:        func() Message { return new(NextTurn) },

		TypeGameStartedEventForBot:      func() Message { return new(GameStartedEventForBot) },
		TypeGameStartedEventForObserver: func() Message { return new(GameStartedEventForObserver) },
		TypeGameEndedEventForBot:        func() Message { return new(GameEndedEventForBot) },
		TypeGameEndedEventForObserver:   func() Message { return new(GameEndedEventForObserver) },
		TypeGameAbortedEvent:            func() Message { return new(GameAbortedEvent) },
		TypeGamePausedEventForObserver:  func() Message { return new(GamePausedEventForObserver) },
		TypeGameResumedEventForObserver: func() Message { return new(GameResumedEventForObserver) },
		TypeRoundStartedEvent:           func() Message { return new(RoundStartedEvent) },
		TypeRoundEndedEventForBot:       func() Message { return new(RoundEndedEventForBot) },
		TypeRoundEndedEventForObserver:  func() Message { return new(RoundEndedEventForObserver) },

		TypeTickEventForBot:      func() Message { return new(TickEventForBot) },
		TypeTickEventForObserver: func() Message { return new(TickEventForObserver) },
	}
	for t, f := range eventFactories {
		m[t] = f
	}
	return m
}()

// Types returns the full known vocabulary.
func Types() []Type {
	out := make([]Type, 0, len(messageFactories))
	for t := range messageFactories {
		out = append(out, t)
	}
	return out
}

// New returns an empty message of type t, or nil when t is not in the vocabulary.
func New(t Type) Message {
	f, ok := messageFactories[t]
	if !ok {
		return nil
	}
	return f()
}

// Decode turns one text frame into a typed message. Unknown discriminators yield
// *Unrecognized with a nil error; everything else that cannot be decoded yields a
// *DecodeError.
func Decode(raw []byte) (Message, error) {
	return decode(raw, messageFactories)
}

func decode(raw []byte, factories map[Type]factory) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, malformed("", "", "not a JSON object", err)
	}
	if fields == nil {
		return nil, malformed("", "", "not a JSON object", nil)
	}

	rawType, ok := fields["type"]
	if !ok {
		return nil, malformed("", "type", "missing discriminator", nil)
	}
	var name string
	if err := json.Unmarshal(rawType, &name); err != nil {
		return nil, malformed("", "type", "discriminator is not a string", err)
	}
	if name == "" {
		return nil, malformed("", "type", "empty discriminator", nil)
	}
	t := Type(name)

	f, ok := factories[t]
	if !ok {
		return &Unrecognized{Type: t, Raw: append(json.RawMessage(nil), raw...)}, nil
	}

	msg := f()
	if err := checkRequired(reflect.TypeOf(msg).Elem(), fields, ""); err != nil {
		err.Type = t
		return nil, err
	}
	body, _, err := exactKeys(reflect.TypeOf(msg).Elem(), raw)
	if err != nil {
		return nil, malformed(t, "", "not a JSON object", err)
	}
	if err := json.Unmarshal(body, msg); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, de
		}
		field := ""
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			field = te.Field
		}
		return nil, malformed(t, field, "mistyped field", err)
	}
	return msg, nil
}

// Encode renders m as a single envelope with "type" as its first field. Absent optional
// fields are omitted. An *Unrecognized message is written back verbatim, and fails with
// ErrEmptyFrame when it carries no frame.
func Encode(m Message) ([]byte, error) {
	if m == nil || reflect.ValueOf(m).IsNil() {
		return nil, ErrNilMessage
	}
	if u, ok := m.(*Unrecognized); ok {
		if len(bytes.TrimSpace(u.Raw)) == 0 {
			return nil, fmt.Errorf("protocol: encode %s: %w", u.Type, ErrEmptyFrame)
		}
		return append([]byte(nil), u.Raw...), nil
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.MessageType(), err)
	}
	head, err := json.Marshal(m.MessageType().String())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(head) + 9)
	buf.WriteString(`{"type":`)
	buf.Write(head)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
