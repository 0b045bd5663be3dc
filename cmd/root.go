// Package cmd is for command line interactions with the amrscan application
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"amrscan/logger"
)

const Version = "0.2.0"

var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "amrscan",
	Short:   "Scan bacterial genome assemblies for antimicrobial resistance determinants",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zapcore.InfoLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		if err := logger.InitLogger(level); err != nil {
			return err
		}

		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env found, using local environment")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err.Error())
	}
	logger.Sync() // Make sure that the buffered is flushed.
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug detail, including every blastn invocation")
}
