// Package commands implements the CLI commands for harvest.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Scrape and normalize university event calendars",
	Long: `Harvest collects academic event listings from department sites and
calendar feeds, normalizes them into a shared schema, and writes
per-source and combined JSON datasets.

Sources are defined in a YAML file; the scraper itself is generic.

Examples:
  # Harvest every configured source
  harvest scrape --sources configs/sources.yaml -o data/

  # Harvest a single department
  harvest scrape --sources configs/sources.yaml --only "Physics" -o data/

  # Merge per-source datasets into one corpus
  harvest combine data/*.json -o data/all_events.json`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.harvest.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
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
		viper.SetConfigName(".harvest")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HARVEST")
	viper.AutomaticEnv()

	_ = viper.BindEnv("flaresolverr_url", "FLARESOLVERR_URL")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
