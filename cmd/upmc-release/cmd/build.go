package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc-release/internal/service/release"
)

// buildCmd builds the updater artifact and records its metadata in the
// manifest, leaving versions and the release channel untouched.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the updater artifact and record its metadata",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &release.Options{
			ConfigPath:  configPath,
			SkipResolve: true,
			SkipPublish: true,
		}

		return release.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(buildCmd)
}
