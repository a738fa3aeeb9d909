package protocol

import (
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spinnerJSON = `{
	"name": "Spinner",
	"version": "1.0",
	"authors": ["Ada Lovelace"],
	"description": "Spins and fires",
	"homepage": "https://example.org/spinner",
	"countryCodes": ["DK", "GB"],
	"gameTypes": ["melee", "classic"]
}`

func TestLoadBotIdentity(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bots/spinner.json", []byte(spinnerJSON), 0o644))

	id, err := LoadBotIdentity(fs, "/bots/spinner.json")
	require.NoError(t, err)

	assert.Equal(t, "Spinner", id.Name)
	assert.Equal(t, []string{"DK", "GB"}, id.CountryCodes)
	assert.Equal(t, runtime.Version(), id.Platform)
	assert.Equal(t, "Go", id.ProgrammingLang)
	assert.Nil(t, id.InitialPosition)
}

func TestLoadBotIdentity_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/broken.json", []byte(`{"name":`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/invalid.json", []byte(`{"name":"x","version":"1","authors":[],"gameTypes":["melee"]}`), 0o644))

	_, err := LoadBotIdentity(fs, "/missing.json")
	assert.Error(t, err)

	_, err = LoadBotIdentity(fs, "/broken.json")
	assert.ErrorContains(t, err, "parse bot identity")

	_, err = LoadBotIdentity(fs, "/invalid.json")
	assert.ErrorContains(t, err, "invalid bot identity")
}

func TestBotIdentity_Validate(t *testing.T) {
	valid := BotIdentity{Name: "a", Version: "1", Authors: []string{"me"}, GameTypes: []string{"melee"}}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*BotIdentity)
	}{
		{"no name", func(b *BotIdentity) { b.Name = "" }},
		{"no version", func(b *BotIdentity) { b.Version = "" }},
		{"blank author", func(b *BotIdentity) { b.Authors = []string{""} }},
		{"no game types", func(b *BotIdentity) { b.GameTypes = nil }},
		{"bad homepage", func(b *BotIdentity) { b.Homepage = "not a url" }},
		{"bad country", func(b *BotIdentity) { b.CountryCodes = []string{"Denmark"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			assert.Error(t, b.Validate())
		})
	}
}

func TestTeamIdentity_Validate(t *testing.T) {
	assert.NoError(t, TeamIdentity{ID: 1, Name: "Reds", Version: "1"}.Validate())
	assert.Error(t, TeamIdentity{ID: 0, Name: "Reds", Version: "1"}.Validate())
	assert.Error(t, TeamIdentity{ID: 1, Version: "1"}.Validate())
}

func TestNewBotHandshake(t *testing.T) {
	bot := BotIdentity{
		Name:            "Spinner",
		Version:         "1.0",
		Authors:         []string{"Ada"},
		GameTypes:       []string{"melee"},
		Platform:        "go",
		ProgrammingLang: "Go",
	}

	t.Run("solo", func(t *testing.T) {
		hs := NewBotHandshake("abc", bot, nil, false, "")
		assert.Equal(t, "abc", hs.SessionID)
		assert.Equal(t, "Spinner", hs.Name)
		assert.Nil(t, hs.TeamID)
		assert.Nil(t, hs.Secret)

		frame, err := Encode(hs)
		require.NoError(t, err)
		assert.NotContains(t, string(frame), "secret")
		assert.NotContains(t, string(frame), "teamId")
	})

	t.Run("team droid with secret", func(t *testing.T) {
		hs := NewBotHandshake("abc", bot, &TeamIdentity{ID: 4, Name: "Reds", Version: "2"}, true, "tok")
		require.NotNil(t, hs.TeamID)
		assert.Equal(t, 4, *hs.TeamID)
		assert.Equal(t, "Reds", *hs.TeamName)
		assert.Equal(t, "2", *hs.TeamVersion)
		assert.Equal(t, "tok", *hs.Secret)
		assert.True(t, hs.IsDroid)
	})
}
