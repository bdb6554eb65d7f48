package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dustinops/pdfcsv-packager/internal/service/packager"
)

var (
	// cleanCmd removes prior build artifacts.
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove prior build artifacts",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return packager.RunClean(ctx, &packager.Options{ConfigPath: configPath})
		},
	}

	// buildCmd runs clean and build, skipping publish.
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Clean and build the executable without publishing",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return packager.RunBuild(ctx, &packager.Options{ConfigPath: configPath})
		},
	}

	// publishCmd copies an already-built artifact to the publish folder.
	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Copy the built executable to the publish folder",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return packager.RunPublish(ctx, &packager.Options{ConfigPath: configPath})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(cleanCmd, buildCmd, publishCmd)
}
