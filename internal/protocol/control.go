package protocol

import "reflect"

// BotIntent is the bot's decision for the upcoming turn. Every field is optional: an absent
// field leaves the corresponding setting unchanged from the previous turn.
type BotIntent struct {
	TurnRate               *float64      `json:"turnRate,omitempty"`
	GunTurnRate            *float64      `json:"gunTurnRate,omitempty"`
	RadarTurnRate          *float64      `json:"radarTurnRate,omitempty"`
	TargetSpeed            *float64      `json:"targetSpeed,omitempty"`
	Firepower              *float64      `json:"firepower,omitempty"`
	AdjustGunForBodyTurn   *bool         `json:"adjustGunForBodyTurn,omitempty"`
	AdjustRadarForBodyTurn *bool         `json:"adjustRadarForBodyTurn,omitempty"`
	AdjustRadarForGunTurn  *bool         `json:"adjustRadarForGunTurn,omitempty"`
	Rescan                 *bool         `json:"rescan,omitempty"`
	FireAssist             *bool         `json:"fireAssist,omitempty"`
	BodyColor              *Color        `json:"bodyColor,omitempty"`
	TurretColor            *Color        `json:"turretColor,omitempty"`
	RadarColor             *Color        `json:"radarColor,omitempty"`
	BulletColor            *Color        `json:"bulletColor,omitempty"`
	ScanColor              *Color        `json:"scanColor,omitempty"`
	TracksColor            *Color        `json:"tracksColor,omitempty"`
	GunColor               *Color        `json:"gunColor,omitempty"`
	StdOut                 *string       `json:"stdOut,omitempty"`
	StdErr                 *string       `json:"stdErr,omitempty"`
	TeamMessages           []TeamMessage `json:"teamMessages,omitzero"`
}

// IsEmpty reports whether the intent changes nothing.
func (i *BotIntent) IsEmpty() bool {
	return i == nil || reflect.ValueOf(*i).IsZero()
}

// BotReady tells the server the bot is ready to start the game.
type BotReady struct{}

// BotInfo is a bot handshake enriched with the address the bot was reached on.
type BotInfo struct {
	BotHandshake
	Host string `json:"host"`
	Port int    `json:"port"`
}

// BotListUpdate lists the bots currently connected to the server.
type BotListUpdate struct {
	Bots []BotInfo `json:"bots"`
}

// ChangeTps asks the server to change the turns per second.
type ChangeTps struct {
	Tps int `json:"tps"`
}

// TpsChangedEvent tells observers and controllers the turns per second changed.
type TpsChangedEvent struct {
	Tps int `json:"tps"`
}

// StartGame asks the server to start a game with the given bots.
type StartGame struct {
	GameSetup    GameSetup    `json:"gameSetup"`
	BotAddresses []BotAddress `json:"botAddresses"`
}

type StopGame struct{}

type PauseGame struct{}

type ResumeGame struct{}

// NextTurn advances a paused game by one turn.
type NextTurn struct{}

func (*BotIntent) MessageType() Type       { return TypeBotIntent }
func (*BotReady) MessageType() Type        { return TypeBotReady }
func (*BotInfo) MessageType() Type         { return TypeBotInfo }
func (*BotListUpdate) MessageType() Type   { return TypeBotListUpdate }
func (*ChangeTps) MessageType() Type       { return TypeChangeTps }
func (*TpsChangedEvent) MessageType() Type { return TypeTpsChangedEvent }
func (*StartGame) MessageType() Type       { return TypeStartGame }
func (*StopGame) MessageType() Type        { return TypeStopGame }
func (*PauseGame) MessageType() Type       { return TypePauseGame }
func (*ResumeGame) MessageType() Type      { return TypeResumeGame }
func (*NextTurn) MessageType() Type        { return TypeNextTurn }

func (*BotIntent) message()       {}
func (*BotReady) message()        {}
func (*BotInfo) message()         {}
func (*BotListUpdate) message()   {}
func (*ChangeTps) message()       {}
func (*TpsChangedEvent) message() {}
func (*StartGame) message()       {}
func (*StopGame) message()        {}
func (*PauseGame) message()       {}
func (*ResumeGame) message()      {}
func (*NextTurn) message()        {}
