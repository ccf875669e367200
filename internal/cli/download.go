package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/usestring/avrex/pkg/avrex"
)

var errDateRange = errors.New("date range need to be in format YYYY-MM-DD,YYYY-MM-DD")

func (a *App) downloadCommand() *cobra.Command {
	var dateRange string
	cmd := &cobra.Command{
		Use:   "download-report REPORT DESTINATION",
		Short: "Download a report",
		Long: `Download a report.

REPORT is a report ID or exact name of a report.
DESTINATION is a path to a file. Existing files are overwritten.
The file must have an extension matching a valid export format for the report,
such as .csv, .tsv, .psv or .xml.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, dest := args[0], args[1]

			format := strings.Trim(filepath.Ext(dest), ".")
			if format == "" {
				return fmt.Errorf("destination %q must have an extension of a valid export format", dest)
			}

			from, to, err := parseDateRange(dateRange)
			if err != nil {
				return fmt.Errorf("invalid value for --date-range: %w", err)
			}

			client, err := a.login(cmd.Context())
			if err != nil {
				return err
			}

			return download(cmd, client, avrex.DownloadRequest{
				Report: report,
				Format: format,
				From:   from,
				To:     to,
			}, dest)
		},
	}
	cmd.Flags().StringVar(&dateRange, "date-range", "", "Format: YYYY-MM-DD,YYYY-MM-DD")
	return cmd
}

// download writes the export to dest, removing the file if the download fails.
func download(cmd *cobra.Command, client *avrex.Client, req avrex.DownloadRequest, dest string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing destination: %w", cerr)
		}
		if err != nil {
			if rerr := os.Remove(dest); rerr != nil {
				slog.Warn("failed to remove partial download", slog.String("path", dest), slog.String("error", rerr.Error()))
			}
		}
	}()

	return client.DownloadReport(cmd.Context(), req, f)
}

// parseDateRange splits "YYYY-MM-DD,YYYY-MM-DD" into its two dates. An empty
// value yields two empty strings.
func parseDateRange(value string) (string, string, error) {
	if value == "" {
		return "", "", nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return "", "", errDateRange
	}
	var dates [2]string
	for i, p := range parts {
		d, err := time.Parse(time.DateOnly, p)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", errDateRange, err)
		}
		dates[i] = d.Format(time.DateOnly)
	}
	return dates[0], dates[1], nil
}
