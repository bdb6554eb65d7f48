package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dustinops/pdfcsv-packager/internal/service/watcher"
)

// watchCmd reruns the pipeline whenever the entry script changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and publish whenever the entry script changes",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		return watcher.Run(ctx, &watcher.Options{ConfigPath: configPath})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(watchCmd)
}
