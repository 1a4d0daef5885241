package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/txtcrawl/osutils"
	"github.com/fioncat/txtcrawl/types"
	"github.com/spf13/cobra"
)

func History() *cobra.Command {
	var showJson bool
	cmd := &cobra.Command{
		Use:   "history [ID]",
		Short: "Show crawl history",

		Args: cobra.MaximumNArgs(1),
	}
	buildHistoryCommand(cmd, runHistory(&showJson))

	cmd.Flags().BoolVarP(&showJson, "json", "J", false, "Show json output")

	return cmd
}

func runHistory(showJson *bool) func(opts *HistoryOptions, args []string) error {
	return func(opts *HistoryOptions, args []string) error {
		if opts.Report != nil {
			if *showJson {
				return printJson(opts.Report)
			}
			showReport(opts.Report)
			showFileErrors(opts.Report)
			showReportSummary(opts.Report)
			return nil
		}

		reports, err := opts.History.List()
		if err != nil {
			return err
		}

		if *showJson {
			return printJson(reports)
		}

		if len(reports) == 0 {
			fmt.Println("No crawl")
			return nil
		}

		rows := make([][]string, len(reports))
		for i, report := range reports {
			status := types.PartitionStatusSucceeded
			if len(report.Failed()) > 0 {
				status = types.PartitionStatusFailed
			}
			rows[i] = []string{
				report.ID,
				humanize.Time(time.UnixMilli(report.StartTime)),
				report.Server,
				report.BasePath.String(),
				status.Color(),
				fmt.Sprintf("%d/%d", len(report.Partitions)-len(report.Failed()), len(report.Partitions)),
				fmt.Sprint(report.Documents()),
				humanize.Bytes(uint64(report.Bytes())),
			}
		}

		osutils.ShowTable([]string{"ID", "Started", "Server", "Base Path", "Status", "Partitions", "Documents", "Size"}, rows)
		return nil
	}
}

func printJson(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("Marshal json items: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
