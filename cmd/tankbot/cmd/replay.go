package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/tankbot/internal/app"
	"github.com/nfrund/tankbot/internal/msglog"
)

var replayCmd = &cobra.Command{
	Use:   "replay <recording.jsonl>",
	Short: "Play a recorded session offline",
	Long: `Feed the frames of a recording made with --record to the bot, exactly as the
server sent them, and print every frame the bot answers with, one per line.

Replaying the same recording with the same script gives the same output, which makes
it a quick regression check for strategy changes.

Examples:
  tankbot replay session.jsonl
  tankbot replay session.jsonl --script bots/aggressive.tengo`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd.Flags(), cfg)
		// Recording the replay would overwrite its input.
		cfg.MessageLogFile = ""
		cfg.DiagAddr = ""
		cfg.HotReload = false
		if err := cfg.Validate(); err != nil {
			return err
		}

		frames, err := msglog.ReadFrames(afero.NewOsFs(), args[0])
		if err != nil {
			return err
		}
		sent, err := app.Replay(commandContext(cmd), cfg, frames)
		for _, f := range sent {
			fmt.Fprintln(cmd.OutOrStdout(), string(f))
		}
		return err
	},
}

func init() {
	addBotFlags(replayCmd.Flags())
	rootCmd.AddCommand(replayCmd)
}
