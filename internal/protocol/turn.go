package protocol

import (
	"bytes"
	"encoding/json"
)

// TickEventForBot is the per-turn event a bot must answer with one BotIntent.
type TickEventForBot struct {
	RoundNumber  int           `json:"roundNumber"`
	TurnNumber   int           `json:"turnNumber"`
	EnemyCount   int           `json:"enemyCount"`
	BotState     BotState      `json:"botState"`
	BulletStates []BulletState `json:"bulletStates"`
	Events       EventList     `json:"events"`
}

// TickEventForObserver is the per-turn event sent to observers.
type TickEventForObserver struct {
	RoundNumber  int              `json:"roundNumber"`
	TurnNumber   int              `json:"turnNumber"`
	BotStates    []BotStateWithID `json:"botStates"`
	BulletStates []BulletState    `json:"bulletStates"`
	Events       EventList        `json:"events"`
}

// SkippedTurnEvent tells a bot its intent for a turn arrived too late.
type SkippedTurnEvent struct {
	TurnNumber int `json:"turnNumber"`
}

type BotDeathEvent struct {
	TurnNumber int `json:"turnNumber"`
	VictimID   int `json:"victimId"`
}

type BotHitBotEvent struct {
	TurnNumber int     `json:"turnNumber"`
	BotID      int     `json:"botId"`
	VictimID   int     `json:"victimId"`
	Energy     float64 `json:"energy"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rammed     bool    `json:"rammed"`
}

type BotHitWallEvent struct {
	TurnNumber int `json:"turnNumber"`
	VictimID   int `json:"victimId"`
}

type BulletFiredEvent struct {
	TurnNumber int         `json:"turnNumber"`
	Bullet     BulletState `json:"bullet"`
}

type BulletHitBotEvent struct {
	TurnNumber int         `json:"turnNumber"`
	VictimID   int         `json:"victimId"`
	Bullet     BulletState `json:"bullet"`
	Damage     float64     `json:"damage"`
	Energy     float64     `json:"energy"`
}

type BulletHitBulletEvent struct {
	TurnNumber int         `json:"turnNumber"`
	Bullet     BulletState `json:"bullet"`
	HitBullet  BulletState `json:"hitBullet"`
}

type BulletHitWallEvent struct {
	TurnNumber int         `json:"turnNumber"`
	Bullet     BulletState `json:"bullet"`
}

// HitByBulletEvent is sent to the bot that was hit.
type HitByBulletEvent struct {
	TurnNumber int         `json:"turnNumber"`
	Bullet     BulletState `json:"bullet"`
	Damage     float64     `json:"damage"`
	Energy     float64     `json:"energy"`
}

// ScannedBotEvent reports a bot caught in the radar sweep of ScannedByBotID.
type ScannedBotEvent struct {
	TurnNumber     int     `json:"turnNumber"`
	ScannedByBotID int     `json:"scannedByBotId"`
	ScannedBotID   int     `json:"scannedBotId"`
	Energy         float64 `json:"energy"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Direction      float64 `json:"direction"`
	Speed          float64 `json:"speed"`
}

// TeamMessageEvent carries a message from a teammate. MsgType holds the wire
// "messageType", since MessageType is taken by the Message method.
type TeamMessageEvent struct {
	TurnNumber int    `json:"turnNumber"`
	Message    string `json:"message"`
	MsgType    string `json:"messageType"`
	SenderID   int    `json:"senderId"`
}

type WonRoundEvent struct {
	TurnNumber int `json:"turnNumber"`
}

// EventList is the ordered list of sub-events of one turn. Each element is encoded as its
// own envelope with a "type" field.
type EventList []Event

// MarshalJSON encodes every event as a full envelope.
func (l EventList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, ev := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := Encode(ev)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes each element through the sub-event vocabulary. Types outside it
// become *Unrecognized instead of failing the whole tick.
func (l *EventList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	events := make(EventList, 0, len(raws))
	for _, raw := range raws {
		msg, err := decode(raw, eventFactories)
		if err != nil {
			return err
		}
		events = append(events, msg.(Event))
	}
	*l = events
	return nil
}

func (*TickEventForBot) MessageType() Type      { return TypeTickEventForBot }
func (*TickEventForObserver) MessageType() Type { return TypeTickEventForObserver }
func (*SkippedTurnEvent) MessageType() Type     { return TypeSkippedTurnEvent }
func (*BotDeathEvent) MessageType() Type        { return TypeBotDeathEvent }
func (*BotHitBotEvent) MessageType() Type       { return TypeBotHitBotEvent }
func (*BotHitWallEvent) MessageType() Type      { return TypeBotHitWallEvent }
func (*BulletFiredEvent) MessageType() Type     { return TypeBulletFiredEvent }
func (*BulletHitBotEvent) MessageType() Type    { return TypeBulletHitBotEvent }
func (*BulletHitBulletEvent) MessageType() Type { return TypeBulletHitBulletEvent }
func (*BulletHitWallEvent) MessageType() Type   { return TypeBulletHitWallEvent }
func (*HitByBulletEvent) MessageType() Type     { return TypeHitByBulletEvent }
func (*ScannedBotEvent) MessageType() Type      { return TypeScannedBotEvent }
func (*TeamMessageEvent) MessageType() Type     { return TypeTeamMessageEvent }
func (*WonRoundEvent) MessageType() Type        { return TypeWonRoundEvent }

func (*TickEventForBot) message()      {}
func (*TickEventForObserver) message() {}
func (*SkippedTurnEvent) message()     {}
func (*BotDeathEvent) message()        {}
func (*BotHitBotEvent) message()       {}
func (*BotHitWallEvent) message()      {}
func (*BulletFiredEvent) message()     {}
func (*BulletHitBotEvent) message()    {}
func (*BulletHitBulletEvent) message() {}
func (*BulletHitWallEvent) message()   {}
func (*HitByBulletEvent) message()     {}
func (*ScannedBotEvent) message()      {}
func (*TeamMessageEvent) message()     {}
func (*WonRoundEvent) message()        {}

func (*SkippedTurnEvent) event()     {}
func (*BotDeathEvent) event()        {}
func (*BotHitBotEvent) event()       {}
func (*BotHitWallEvent) event()      {}
func (*BulletFiredEvent) event()     {}
func (*BulletHitBotEvent) event()    {}
func (*BulletHitBulletEvent) event() {}
func (*BulletHitWallEvent) event()   {}
func (*HitByBulletEvent) event()     {}
func (*ScannedBotEvent) event()      {}
func (*TeamMessageEvent) event()     {}
func (*WonRoundEvent) event()        {}
