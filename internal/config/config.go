package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultServerURL is where a local Tank Royale server listens.
const DefaultServerURL = "ws://localhost:7654"

// Config holds all configuration for the bot process.
type Config struct {
	ServerURL    string `env:"SERVER_URL" envDefault:"ws://localhost:7654" validate:"required,url"`
	ServerSecret string `env:"SERVER_SECRET"`

	BotInfoFile     string `env:"BOT_INFO_FILE" envDefault:"bot.json" validate:"required"`
	BotScript       string `env:"BOT_SCRIPT"`
	Droid           bool   `env:"BOT_DROID"`
	HotReload       bool   `env:"SCRIPT_HOT_RELOAD"`
	StrictHandshake bool   `env:"STRICT_HANDSHAKE"`

	TeamID      int    `env:"TEAM_ID" validate:"gte=0"`
	TeamName    string `env:"TEAM_NAME" validate:"required_unless=TeamID 0"`
	TeamVersion string `env:"TEAM_VERSION" validate:"required_unless=TeamID 0"`

	MessageLogFile string `env:"MESSAGE_LOG_FILE"`
	DiagAddr       string `env:"DIAG_ADDR" validate:"omitempty,hostname_port"`

	TracingEnabled   bool   `env:"TRACING_ENABLED"`
	TracingZipkinURL string `env:"TRACING_ZIPKIN_URL" envDefault:"http://localhost:9411/api/v2/spans" validate:"omitempty,url"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"omitempty,oneof=debug info warn error"`
}

var validate = validator.New()

// New loads configuration from environment variables. Values from the given dotenv files
// (".env" when none are given) fill in variables the environment does not set. An empty
// value counts as unset.
func New(envFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment(envFiles)}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environment merges the dotenv files, earlier files first, under the process environment.
func environment(envFiles []string) map[string]string {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	merged := map[string]string{}
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			slog.Debug("No .env file found, relying on environment variables", "file", f)
			continue
		}
		for k, v := range vals {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range merged {
		if v == "" {
			delete(merged, k)
		}
	}
	return merged
}

// Validate checks field constraints, e.g. after CLI flags have overridden the environment.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
