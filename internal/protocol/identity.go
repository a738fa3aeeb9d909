package protocol

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

var validate = validator.New()

// BotIdentity is the static description of a bot, usually read from a JSON file that
// sits next to the bot.
type BotIdentity struct {
	Name            string           `json:"name" validate:"required"`
	Version         string           `json:"version" validate:"required"`
	Authors         []string         `json:"authors" validate:"required,min=1,dive,required"`
	Description     string           `json:"description"`
	Homepage        string           `json:"homepage" validate:"omitempty,url"`
	CountryCodes    []string         `json:"countryCodes,omitempty" validate:"omitempty,dive,iso3166_1_alpha2"`
	GameTypes       []string         `json:"gameTypes" validate:"required,min=1,dive,required"`
	Platform        string           `json:"platform"`
	ProgrammingLang string           `json:"programmingLang"`
	InitialPosition *InitialPosition `json:"initialPosition,omitempty"`
}

// TeamIdentity is consulted only when the bot plays as part of a team.
type TeamIdentity struct {
	ID      int    `json:"id" validate:"gt=0"`
	Name    string `json:"name" validate:"required"`
	Version string `json:"version" validate:"required"`
}

// Validate checks the identity before it is offered to a server.
func (b BotIdentity) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("protocol: invalid bot identity: %w", err)
	}
	return nil
}

// Validate checks the team context.
func (t TeamIdentity) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("protocol: invalid team identity: %w", err)
	}
	return nil
}

// LoadBotIdentity reads and validates a bot identity file. Platform and programming
// language default to the Go runtime when the file leaves them empty.
func LoadBotIdentity(fs afero.Fs, path string) (BotIdentity, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return BotIdentity{}, fmt.Errorf("protocol: read bot identity: %w", err)
	}
	var id BotIdentity
	if err := json.Unmarshal(data, &id); err != nil {
		return BotIdentity{}, fmt.Errorf("protocol: parse bot identity %s: %w", path, err)
	}
	if id.Platform == "" {
		id.Platform = runtime.Version()
	}
	if id.ProgrammingLang == "" {
		id.ProgrammingLang = "Go"
	}
	if err := id.Validate(); err != nil {
		return BotIdentity{}, err
	}
	return id, nil
}

// NewBotHandshake builds the reply to a ServerHandshake. The session id is passed through
// unchanged and the secret is the token the server expects, forwarded verbatim; an empty
// secret is left out of the frame.
func NewBotHandshake(sessionID string, bot BotIdentity, team *TeamIdentity, isDroid bool, secret string) *BotHandshake {
	hs := &BotHandshake{
		SessionID:       sessionID,
		Name:            bot.Name,
		Version:         bot.Version,
		Authors:         bot.Authors,
		Description:     bot.Description,
		Homepage:        bot.Homepage,
		CountryCodes:    bot.CountryCodes,
		GameTypes:       bot.GameTypes,
		Platform:        bot.Platform,
		ProgrammingLang: bot.ProgrammingLang,
		InitialPosition: bot.InitialPosition,
		IsDroid:         isDroid,
	}
	if team != nil {
		id, name, version := team.ID, team.Name, team.Version
		hs.TeamID = &id
		hs.TeamName = &name
		hs.TeamVersion = &version
	}
	if secret != "" {
		s := secret
		hs.Secret = &s
	}
	return hs
}
