package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc-release/internal/service/release"
)

var (
	// publishDirect pushes the working branch as-is during promotion.
	publishDirect bool

	// publishMessage overrides the synthesized release message.
	publishMessage string

	// publishCmd stages and publishes the current dist tree without resolving
	// versions or rebuilding the artifact.
	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Stage and publish the release to the configured channel",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &release.Options{
				ConfigPath:  configPath,
				SkipResolve: true,
				SkipBuild:   true,
				Direct:      publishDirect,
				Message:     publishMessage,
			}

			return release.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	publishCmd.Flags().BoolVar(&publishDirect, "direct", false, "push the current branch without promoting it to main")
	publishCmd.Flags().StringVarP(&publishMessage, "message", "m", "", "commit message for the release")

	rootCmd.AddCommand(publishCmd)
}
