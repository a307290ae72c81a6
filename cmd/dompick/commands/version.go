package commands

import (
	"github.com/spf13/cobra"

	"github.com/AmeRaino/dompick/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
