package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc-release/internal/config"
	"github.com/chenjicheng/upmc-release/internal/logger"
	"github.com/chenjicheng/upmc-release/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel for all subcommands.
	logLevel string

	// rootCmd represents the base command for the release pipeline.
	rootCmd = &cobra.Command{
		Use:   "upmc-release",
		Short: "Release pipeline for the UPMC modpack distribution",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the upmc-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")
}
