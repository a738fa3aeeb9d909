package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nfrund/tankbot/internal/app"
	"github.com/nfrund/tankbot/internal/config"
)

var runFlags struct {
	server    string
	secret    string
	botFile   string
	script    string
	hotReload bool
	strict    bool
	droid     bool
	record    string
	diag      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a server and play one session",
	Long: `Connect to a Tank Royale server, answer its handshake with the bot's identity and
play until the game is aborted, the server closes the connection or the process is
interrupted.

Examples:
  tankbot run --server ws://localhost:7654 --bot bots/spinner.json
  tankbot run --script bots/aggressive.tengo --hot-reload --diag localhost:8090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd.Flags(), cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Run(ctx, cfg)
	},
}

func addBotFlags(fs *pflag.FlagSet) {
	fs.StringVar(&runFlags.botFile, "bot", "", "bot identity JSON file (BOT_INFO_FILE)")
	fs.StringVar(&runFlags.script, "script", "", "Tengo strategy script; the built-in one is used when empty (BOT_SCRIPT)")
	fs.BoolVar(&runFlags.strict, "strict", false, "end the session on messages that arrive before the handshake (STRICT_HANDSHAKE)")
	fs.StringVar(&runFlags.record, "record", "", "write every inbound frame to this JSON lines file (MESSAGE_LOG_FILE)")
}

func applyRunFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("server") {
		cfg.ServerURL = runFlags.server
	}
	if fs.Changed("secret") {
		cfg.ServerSecret = runFlags.secret
	}
	if fs.Changed("bot") {
		cfg.BotInfoFile = runFlags.botFile
	}
	if fs.Changed("script") {
		cfg.BotScript = runFlags.script
	}
	if fs.Changed("hot-reload") {
		cfg.HotReload = runFlags.hotReload
	}
	if fs.Changed("strict") {
		cfg.StrictHandshake = runFlags.strict
	}
	if fs.Changed("droid") {
		cfg.Droid = runFlags.droid
	}
	if fs.Changed("record") {
		cfg.MessageLogFile = runFlags.record
	}
	if fs.Changed("diag") {
		cfg.DiagAddr = runFlags.diag
	}
}

func init() {
	fs := runCmd.Flags()
	fs.StringVar(&runFlags.server, "server", "", "server WebSocket URL (SERVER_URL)")
	fs.StringVar(&runFlags.secret, "secret", "", "bot secret expected by the server (SERVER_SECRET)")
	fs.BoolVar(&runFlags.hotReload, "hot-reload", false, "reload the script when the file changes (SCRIPT_HOT_RELOAD)")
	fs.BoolVar(&runFlags.droid, "droid", false, "play as a droid (BOT_DROID)")
	fs.StringVar(&runFlags.diag, "diag", "", "serve diagnostics on this address (DIAG_ADDR)")
	addBotFlags(fs)

	rootCmd.AddCommand(runCmd)
}

// commandContext is the command's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
