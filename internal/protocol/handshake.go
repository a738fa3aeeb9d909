package protocol

// ServerHandshake opens every connection. It is sent by the server.
type ServerHandshake struct {
	SessionID string     `json:"sessionId"`
	Name      string     `json:"name"`
	Variant   string     `json:"variant"`
	Version   string     `json:"version"`
	GameTypes []string   `json:"gameTypes"`
	GameSetup *GameSetup `json:"gameSetup,omitempty"`
}

// BotHandshake is the bot's single reply to ServerHandshake.
type BotHandshake struct {
	SessionID       string           `json:"sessionId"`
	Name            string           `json:"name"`
	Version         string           `json:"version"`
	Authors         []string         `json:"authors"`
	Description     string           `json:"description"`
	Homepage        string           `json:"homepage"`
	CountryCodes    []string         `json:"countryCodes,omitzero"`
	GameTypes       []string         `json:"gameTypes"`
	Platform        string           `json:"platform"`
	ProgrammingLang string           `json:"programmingLang"`
	InitialPosition *InitialPosition `json:"initialPosition,omitempty"`
	IsDroid         bool             `json:"isDroid"`
	TeamID          *int             `json:"teamId,omitempty"`
	TeamName        *string          `json:"teamName,omitempty"`
	TeamVersion     *string          `json:"teamVersion,omitempty"`
	Secret          *string          `json:"secret,omitempty"`
}

// ObserverHandshake is sent by observers instead of BotHandshake.
type ObserverHandshake struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Version   string  `json:"version"`
	Author    string  `json:"author"`
	Secret    *string `json:"secret,omitempty"`
}

// ControllerHandshake is sent by controllers instead of BotHandshake.
type ControllerHandshake struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Version   string  `json:"version"`
	Author    string  `json:"author"`
	Secret    *string `json:"secret,omitempty"`
}

func (*ServerHandshake) MessageType() Type     { return TypeServerHandshake }
func (*BotHandshake) MessageType() Type        { return TypeBotHandshake }
func (*ObserverHandshake) MessageType() Type   { return TypeObserverHandshake }
func (*ControllerHandshake) MessageType() Type { return TypeControllerHandshake }

func (*ServerHandshake) message()     {}
func (*BotHandshake) message()        {}
func (*ObserverHandshake) message()   {}
func (*ControllerHandshake) message() {}
