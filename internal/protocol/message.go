package protocol

import "encoding/json"

// Message is one decoded wire envelope. The set of implementations is closed:
// one struct per discriminator in this package plus *Unrecognized.
type Message interface {
	MessageType() Type
	message()
}

// Event is a Message that may appear in the events list of a tick.
type Event interface {
	Message
	event()
}

// Unrecognized holds a structurally valid envelope whose discriminator is outside the
// known vocabulary. Raw is the complete frame as received.
type Unrecognized struct {
	Type Type
	Raw  json.RawMessage
}

func (u *Unrecognized) MessageType() Type { return u.Type }
func (*Unrecognized) message()            {}
func (*Unrecognized) event()              {}

// Color is an HTML color string such as "#FF8800".
type Color string

// InitialPosition is a requested start position; each coordinate is optional.
type InitialPosition struct {
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Direction *float64 `json:"direction,omitempty"`
}

// GameSetup describes the rules of the game the server is about to run.
type GameSetup struct {
	GameType                        string  `json:"gameType"`
	ArenaWidth                      int     `json:"arenaWidth"`
	IsArenaWidthLocked              bool    `json:"isArenaWidthLocked"`
	ArenaHeight                     int     `json:"arenaHeight"`
	IsArenaHeightLocked             bool    `json:"isArenaHeightLocked"`
	MinNumberOfParticipants         int     `json:"minNumberOfParticipants"`
	IsMinNumberOfParticipantsLocked bool    `json:"isMinNumberOfParticipantsLocked"`
	MaxNumberOfParticipants         *int    `json:"maxNumberOfParticipants,omitempty"`
	IsMaxNumberOfParticipantsLocked bool    `json:"isMaxNumberOfParticipantsLocked"`
	NumberOfRounds                  int     `json:"numberOfRounds"`
	IsNumberOfRoundsLocked          bool    `json:"isNumberOfRoundsLocked"`
	GunCoolingRate                  float64 `json:"gunCoolingRate"`
	IsGunCoolingRateLocked          bool    `json:"isGunCoolingRateLocked"`
	MaxInactivityTurns              int     `json:"maxInactivityTurns"`
	IsMaxInactivityTurnsLocked      bool    `json:"isMaxInactivityTurnsLocked"`
	TurnTimeout                     int     `json:"turnTimeout"`
	IsTurnTimeoutLocked             bool    `json:"isTurnTimeoutLocked"`
	ReadyTimeout                    int     `json:"readyTimeout"`
	IsReadyTimeoutLocked            bool    `json:"isReadyTimeoutLocked"`
	DefaultTurnsPerSecond           int     `json:"defaultTurnsPerSecond"`
}

// BotState is the state of a bot at the end of a turn.
type BotState struct {
	IsDroid        bool    `json:"isDroid"`
	Energy         float64 `json:"energy"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Direction      float64 `json:"direction"`
	GunDirection   float64 `json:"gunDirection"`
	RadarDirection float64 `json:"radarDirection"`
	RadarSweep     float64 `json:"radarSweep"`
	Speed          float64 `json:"speed"`
	TurnRate       float64 `json:"turnRate"`
	GunTurnRate    float64 `json:"gunTurnRate"`
	RadarTurnRate  float64 `json:"radarTurnRate"`
	GunHeat        float64 `json:"gunHeat"`
	BodyColor      *Color  `json:"bodyColor,omitempty"`
	TurretColor    *Color  `json:"turretColor,omitempty"`
	RadarColor     *Color  `json:"radarColor,omitempty"`
	BulletColor    *Color  `json:"bulletColor,omitempty"`
	ScanColor      *Color  `json:"scanColor,omitempty"`
	TracksColor    *Color  `json:"tracksColor,omitempty"`
	GunColor       *Color  `json:"gunColor,omitempty"`
}

// BotStateWithID is a bot state as seen by observers.
type BotStateWithID struct {
	BotState
	ID        int     `json:"id"`
	SessionID string  `json:"sessionId"`
	StdOut    *string `json:"stdOut,omitempty"`
	StdErr    *string `json:"stdErr,omitempty"`
}

// BulletState is the state of one bullet in flight.
type BulletState struct {
	BulletID  int     `json:"bulletId"`
	OwnerID   int     `json:"ownerId"`
	Power     float64 `json:"power"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction float64 `json:"direction"`
	Color     *Color  `json:"color,omitempty"`
}

// BotAddress locates a bot the server should start a game with.
type BotAddress struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Participant describes one bot taking part in a game, as reported to observers.
type Participant struct {
	ID              int              `json:"id"`
	SessionID       string           `json:"sessionId"`
	Name            string           `json:"name"`
	Version         string           `json:"version"`
	Authors         []string         `json:"authors"`
	Description     string           `json:"description"`
	Homepage        *string          `json:"homepage,omitempty"`
	CountryCodes    []string         `json:"countryCodes"`
	GameTypes       []string         `json:"gameTypes"`
	Platform        string           `json:"platform"`
	ProgrammingLang string           `json:"programmingLang"`
	InitialPosition *InitialPosition `json:"initialPosition,omitempty"`
	IsDroid         bool             `json:"isDroid"`
	TeamID          *int             `json:"teamId,omitempty"`
	TeamName        *string          `json:"teamName,omitempty"`
	TeamVersion     *string          `json:"teamVersion,omitempty"`
}

// ResultsForBot are the accumulated scores of the receiving bot.
type ResultsForBot struct {
	Rank              int `json:"rank"`
	Survival          int `json:"survival"`
	LastSurvivorBonus int `json:"lastSurvivorBonus"`
	BulletDamage      int `json:"bulletDamage"`
	BulletKillBonus   int `json:"bulletKillBonus"`
	RamDamage         int `json:"ramDamage"`
	RamKillBonus      int `json:"ramKillBonus"`
	TotalScore        int `json:"totalScore"`
	FirstPlaces       int `json:"firstPlaces"`
	SecondPlaces      int `json:"secondPlaces"`
	ThirdPlaces       int `json:"thirdPlaces"`
}

// ResultsForObserver identifies one ranked bot in observer results.
type ResultsForObserver struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// TeamMessage is a message a bot sends to one teammate, or all of them when ReceiverID is absent.
type TeamMessage struct {
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
	ReceiverID  *int   `json:"receiverId,omitempty"`
}
