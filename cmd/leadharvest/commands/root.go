// Package commands implements the CLI commands for leadharvest.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "leadharvest",
	Short: "Search-driven lead extraction for social business pages",
	Long: `Leadharvest finds business pages through search keywords, scrapes
their contact details, and maintains a consolidated lead list.

A run searches every keyword combination, visits each page found, and
saves the results as a timestamped CSV. Consolidation folds all runs
into one deduplicated leads.csv; list extraction derives per-channel
value files from it.

Examples:
  # Full run from a keywords file
  leadharvest run -k keywords.yaml

  # Run, then consolidate and refresh the value lists
  leadharvest run -k keywords.yaml --consolidate --lists

  # Consolidate previously collected runs only
  leadharvest consolidate

  # Rebuild the value lists from the current leads.csv
  leadharvest lists`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.leadharvest.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", ".", "directory for run files, leads.csv and lists")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON records")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Full())
		},
	})
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
		viper.SetConfigName(".leadharvest")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LEADHARVEST")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")

	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogging applies the global logging flags. Each command calls it
// first thing, after viper has seen the flag values.
func initLogging() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
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
