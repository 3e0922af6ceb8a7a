package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc-release/internal/service/release"
)

// upgradeCmd resolves the version pair and synchronizes the manifest files,
// without building or publishing anything.
var upgradeCmd = &cobra.Command{
	Use:   "upgrade [minecraft-version]",
	Short: "Resolve the target version pair and update the manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &release.Options{
			ConfigPath:  configPath,
			SkipBuild:   true,
			SkipPublish: true,
		}
		if len(args) > 0 {
			options.MinecraftVersion = args[0]
		}

		return release.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(upgradeCmd)
}
