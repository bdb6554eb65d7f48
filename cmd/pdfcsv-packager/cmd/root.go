package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dustinops/pdfcsv-packager/internal/config"
	"github.com/dustinops/pdfcsv-packager/internal/logger"
	"github.com/dustinops/pdfcsv-packager/internal/service/packager"
	"github.com/dustinops/pdfcsv-packager/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel controls the verbosity of pipeline output.
	logLevel string

	// rootCmd runs the full pipeline; subcommands run individual steps.
	rootCmd = &cobra.Command{
		Use:   "pdfcsv-packager",
		Short: "Build and publish the PDFCSVTool executable",
		Long:  "Runs the full clean, build, publish sequence: removes prior build artifacts, invokes the bundler to produce a single windowed executable, and copies it to the publish folder.",
		Args:  cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return packager.Run(ctx, &packager.Options{ConfigPath: configPath})
		},
	}
)

// Execute runs the pdfcsv-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")
}
