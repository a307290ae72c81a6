// Package commands implements the CLI commands for dompick.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dompick",
	Short: "Interactive DOM inspection and scrape-script authoring",
	Long: `Dompick loads a web page, mirrors its DOM as a navigable tree, and lets
you promote elements into named scrape targets. An AI provider turns the
target set into a runnable extractData(document) script, and dompick can
execute that script against the live page.

Examples:
  # Inspect a page interactively (opens a browser window)
  dompick inspect https://example.com/listing

  # Author targets from the fetched snapshot, without a browser
  dompick inspect --no-browser https://example.com/listing

  # Generate a script from a saved target set, no UI
  dompick generate -u "https://example.com/listing" -t targets.yaml -o extract.js

  # Run a generated script against a page
  dompick run -u "https://example.com/listing" -s extract.js --format json`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.dompick.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".dompick")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("DOMPICK")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
