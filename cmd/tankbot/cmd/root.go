package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/tankbot/internal/config"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "tankbot",
	Short: "Tank Royale bot client",
	Long: `tankbot connects a scripted bot to a Tank Royale server and plays the bot
protocol on its behalf.

Configuration comes from the environment and from .env files; flags override both.

Available commands:
  run       Connect to a server and play
  replay    Play a recorded session offline and print what the bot would send
  decode    Decode protocol frames read from stdin

Use "tankbot [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "dotenv files to read (default .env)")
}

func loadConfig() (*config.Config, error) {
	return config.New(envFiles...)
}
