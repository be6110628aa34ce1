// Package cli implements the timebuddy command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	jsonOut bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timebuddy",
	Short: "Daily schedule and productivity tracking engine",
	Long: `timebuddy stores AI-generated daily schedules, tracks block-level
completion against a per-day productivity ledger, and feeds completed
task outcomes back to the scheduling service for retraining.

Quick start:
  timebuddy serve             Start the API server
  timebuddy today             Show today's stored schedule
  timebuddy stats             Show this month's productivity stats
  timebuddy log "Write docs"  Record a completed task`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .timebuddy/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newRetrainCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".timebuddy")
		viper.AddConfigPath("$HOME/.timebuddy")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TIMEBUDDY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
