package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc-release/internal/service/release"
)

var (
	// direct pushes the working branch as-is, with no promotion to main.
	direct bool

	// skipBuild leaves the artifact and its manifest metadata untouched.
	skipBuild bool

	// commitMessage overrides the synthesized release message.
	commitMessage string

	// runCmd executes the full pipeline: upgrade, build, publish.
	runCmd = &cobra.Command{
		Use:   "run [minecraft-version]",
		Short: "Run the full release pipeline",
		Long: "Resolve the target version pair, synchronize the manifest, build the updater " +
			"artifact, and publish the result to the configured release channel.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &release.Options{
				ConfigPath: configPath,
				SkipBuild:  skipBuild,
				Direct:     direct,
				Message:    commitMessage,
			}
			if len(args) > 0 {
				options.MinecraftVersion = args[0]
			}

			return release.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().BoolVar(&direct, "direct", false, "push the current branch without promoting it to main")
	runCmd.Flags().BoolVar(&skipBuild, "skip-build", false, "do not invoke the build toolchain")
	runCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message for the release")

	rootCmd.AddCommand(runCmd)
}
