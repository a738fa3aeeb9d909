package protocol

// GameStartedEventForBot tells a bot a game has started and which id it was given.
type GameStartedEventForBot struct {
	MyID           int       `json:"myId"`
	TeammateIDs    []int     `json:"teammateIds"`
	StartX         float64   `json:"startX"`
	StartY         float64   `json:"startY"`
	StartDirection float64   `json:"startDirection"`
	GameSetup      GameSetup `json:"gameSetup"`
}

type GameStartedEventForObserver struct {
	GameSetup    GameSetup     `json:"gameSetup"`
	Participants []Participant `json:"participants"`
}

// GameEndedEventForBot carries the bot's final results.
type GameEndedEventForBot struct {
	NumberOfRounds int           `json:"numberOfRounds"`
	Results        ResultsForBot `json:"results"`
}

type GameEndedEventForObserver struct {
	NumberOfRounds int                  `json:"numberOfRounds"`
	Results        []ResultsForObserver `json:"results"`
}

// GameAbortedEvent ends the game without results.
type GameAbortedEvent struct{}

type GamePausedEventForObserver struct{}

type GameResumedEventForObserver struct{}

// RoundStartedEvent resets the turn counter.
type RoundStartedEvent struct {
	RoundNumber int `json:"roundNumber"`
}

type RoundEndedEventForBot struct {
	RoundNumber int           `json:"roundNumber"`
	TurnNumber  int           `json:"turnNumber"`
	Results     ResultsForBot `json:"results"`
}

type RoundEndedEventForObserver struct {
	RoundNumber int                  `json:"roundNumber"`
	TurnNumber  int                  `json:"turnNumber"`
	Results     []ResultsForObserver `json:"results"`
}

func (*GameStartedEventForBot) MessageType() Type      { return TypeGameStartedEventForBot }
func (*GameStartedEventForObserver) MessageType() Type { return TypeGameStartedEventForObserver }
func (*GameEndedEventForBot) MessageType() Type        { return TypeGameEndedEventForBot }
func (*GameEndedEventForObserver) MessageType() Type   { return TypeGameEndedEventForObserver }
func (*GameAbortedEvent) MessageType() Type            { return TypeGameAbortedEvent }
func (*GamePausedEventForObserver) MessageType() Type  { return TypeGamePausedEventForObserver }
func (*GameResumedEventForObserver) MessageType() Type { return TypeGameResumedEventForObserver }
func (*RoundStartedEvent) MessageType() Type           { return TypeRoundStartedEvent }
func (*RoundEndedEventForBot) MessageType() Type       { return TypeRoundEndedEventForBot }
func (*RoundEndedEventForObserver) MessageType() Type  { return TypeRoundEndedEventForObserver }

func (*GameStartedEventForBot) message()      {}
func (*GameStartedEventForObserver) message() {}
func (*GameEndedEventForBot) message()        {}
func (*GameEndedEventForObserver) message()   {}
func (*GameAbortedEvent) message()            {}
func (*GamePausedEventForObserver) message()  {}
func (*GameResumedEventForObserver) message() {}
func (*RoundStartedEvent) message()           {}
func (*RoundEndedEventForBot) message()       {}
func (*RoundEndedEventForObserver) message()  {}
