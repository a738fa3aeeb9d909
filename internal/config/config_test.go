package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_Defaults(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, "bot.json", cfg.BotInfoFile)
	assert.False(t, cfg.Droid)
	assert.Zero(t, cfg.TeamID)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestNew_EnvFileAndEnvironment(t *testing.T) {
	path := writeEnv(t, "SERVER_URL=ws://arena:7654\nBOT_DROID=true\nTEAM_ID=3\nTEAM_NAME=Reds\nTEAM_VERSION=1\nSERVER_SECRET=from-file\n")
	t.Setenv("SERVER_SECRET", "from-env")

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://arena:7654", cfg.ServerURL)
	assert.True(t, cfg.Droid)
	assert.Equal(t, 3, cfg.TeamID)
	assert.Equal(t, "Reds", cfg.TeamName)
	assert.Equal(t, "from-env", cfg.ServerSecret, "the environment wins over the file")
}

func TestNew_EmptyValueFallsBackToDefault(t *testing.T) {
	path := writeEnv(t, "LOG_LEVEL=debug\nBOT_INFO_FILE=\n")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "bot.json", cfg.BotInfoFile)
}

func TestNew_EarlierFileWins(t *testing.T) {
	first := writeEnv(t, "TEAM_NAME=Reds\n")
	second := writeEnv(t, "TEAM_NAME=Blues\nTEAM_ID=2\nTEAM_VERSION=1\n")

	cfg, err := New(first, second)
	require.NoError(t, err)
	assert.Equal(t, "Reds", cfg.TeamName)
	assert.Equal(t, 2, cfg.TeamID)
}

func TestNew_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad bool":          "BOT_DROID=maybe\n",
		"bad int":           "TEAM_ID=three\n",
		"team without name": "TEAM_ID=3\nTEAM_VERSION=1\n",
		"bad url":           "SERVER_URL=not a url\n",
		"bad log level":     "LOG_LEVEL=loud\n",
		"bad diag addr":     "DIAG_ADDR=nowhere\n",
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(writeEnv(t, env))
			assert.ErrorContains(t, err, "config: ")
		})
	}
}
