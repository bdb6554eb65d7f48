package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dustinops/pdfcsv-packager/internal/release"
	"github.com/dustinops/pdfcsv-packager/internal/repository/history"
)

// historyLimit caps how many records the history command prints.
var historyLimit int

// historyCmd prints recent pipeline runs, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recent build records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo := history.NewFileRepository(release.HistoryFilename)

		records, err := repo.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			_, _ = fmt.Fprintln(out, "no builds recorded yet")
			return nil
		}

		for _, record := range records {
			status := "ok"
			if !record.Success {
				status = "failed"
			}

			_, _ = fmt.Fprintf(out, "%s  %-6s  v%-8s  %s  %s@%s  %s",
				record.StartedAt.Format(time.RFC3339),
				status,
				record.Version,
				record.Artifact,
				record.BuiltBy.Username,
				record.BuiltBy.Hostname,
				record.Duration.Round(time.Millisecond))

			if record.Error != "" {
				_, _ = fmt.Fprintf(out, "  (%s)", record.Error)
			}

			_, _ = fmt.Fprintln(out)
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of records to print")
	rootCmd.AddCommand(historyCmd)
}
