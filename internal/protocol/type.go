package protocol

// Type is the wire discriminator carried in the "type" field of every envelope.
type Type string

// Handshakes.
const (
	TypeBotHandshake        Type = "BotHandshake"
	TypeControllerHandshake Type = "ControllerHandshake"
	TypeObserverHandshake   Type = "ObserverHandshake"
	TypeServerHandshake     Type = "ServerHandshake"
)

// Control messages and commands.
const (
	TypeBotReady        Type = "BotReady"
	TypeBotIntent       Type = "BotIntent"
	TypeBotInfo         Type = "BotInfo"
	TypeBotListUpdate   Type = "BotListUpdate"
	TypeChangeTps       Type = "ChangeTps"
	TypeTpsChangedEvent Type = "TpsChangedEvent"
	TypeStartGame       Type = "StartGame"
	TypeStopGame        Type = "StopGame"
	TypePauseGame       Type = "PauseGame"
	TypeResumeGame      Type = "ResumeGame"
	TypeNextTurn        Type = "NextTurn"
)

// Game and round lifecycle events.
const (
	TypeGameStartedEventForBot      Type = "GameStartedEventForBot"
	TypeGameStartedEventForObserver Type = "GameStartedEventForObserver"
	TypeGameEndedEventForBot        Type = "GameEndedEventForBot"
	TypeGameEndedEventForObserver   Type = "GameEndedEventForObserver"
	TypeGameAbortedEvent            Type = "GameAbortedEvent"
	TypeGamePausedEventForObserver  Type = "GamePausedEventForObserver"
	TypeGameResumedEventForObserver Type = "GameResumedEventForObserver"
	TypeRoundStartedEvent           Type = "RoundStartedEvent"
	TypeRoundEndedEventForBot       Type = "RoundEndedEventForBot"
	TypeRoundEndedEventForObserver  Type = "RoundEndedEventForObserver"
)

// Per-turn events.
const (
	TypeTickEventForBot      Type = "TickEventForBot"
	TypeTickEventForObserver Type = "TickEventForObserver"
	TypeSkippedTurnEvent     Type = "SkippedTurnEvent"
)

// Sub-events nested in a tick.
const (
	TypeBotDeathEvent        Type = "BotDeathEvent"
	TypeBotHitBotEvent       Type = "BotHitBotEvent"
	TypeBotHitWallEvent      Type = "BotHitWallEvent"
	TypeBulletFiredEvent     Type = "BulletFiredEvent"
	TypeBulletHitBotEvent    Type = "BulletHitBotEvent"
	TypeBulletHitBulletEvent Type = "BulletHitBulletEvent"
	TypeBulletHitWallEvent   Type = "BulletHitWallEvent"
	TypeHitByBulletEvent     Type = "HitByBulletEvent"
	TypeScannedBotEvent      Type = "ScannedBotEvent"
	TypeTeamMessageEvent     Type = "TeamMessageEvent"
	TypeWonRoundEvent        Type = "WonRoundEvent"
)

// String returns the discriminator as it appears on the wire.
func (t Type) String() string {
	return string(t)
}

// Known reports whether t belongs to the vocabulary this package can decode into a typed message.
func (t Type) Known() bool {
	_, ok := messageFactories[t]
	return ok
}

// IsBotInbound reports whether a bot client may legitimately receive messages of type t.
// The rest of the vocabulary is addressed to observers, controllers or the server.
func IsBotInbound(t Type) bool {
	switch t {
	case TypeServerHandshake,
		TypeGameStartedEventForBot,
		TypeGameEndedEventForBot,
		TypeGameAbortedEvent,
		TypeRoundStartedEvent,
		TypeRoundEndedEventForBot,
		TypeTickEventForBot,
		TypeSkippedTurnEvent,
		TypeTeamMessageEvent:
		return true
	}
	return false
}
