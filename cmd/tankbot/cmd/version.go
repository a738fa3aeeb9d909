package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/tankbot/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tankbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tankbot v%s\n", app.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
