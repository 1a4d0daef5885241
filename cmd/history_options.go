package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fioncat/txtcrawl/storage"
	"github.com/fioncat/txtcrawl/types"
	"github.com/spf13/cobra"
)

type HistoryOptions struct {
	Config *types.Config

	History storage.ReportHistory

	// Report is set when the command got a report id argument.
	Report *types.CrawlReport
}

func buildHistoryCommand(cmd *cobra.Command, action func(opts *HistoryOptions, args []string) error) {
	cmd.RunE = func(_ *cobra.Command, args []string) error {
		cfg, err := types.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		history, err := storage.OpenBolt(cfg)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer history.Close()

		var report *types.CrawlReport
		if len(args) >= 1 {
			report, err = history.Get(args[0])
			if err != nil {
				return fmt.Errorf("get crawl report %q: %w", args[0], err)
			}
			args = args[1:]
		}

		opts := &HistoryOptions{
			Config:  cfg,
			History: history,
			Report:  report,
		}
		return action(opts, args)
	}
}

func (opts *HistoryOptions) latest() (*types.CrawlReport, error) {
	if opts.Report != nil {
		return opts.Report, nil
	}

	reports, err := opts.History.List()
	if err != nil {
		return nil, err
	}

	var last *types.CrawlReport
	for _, report := range reports {
		if last == nil || report.StartTime > last.StartTime {
			last = report
		}
	}
	if last == nil {
		return nil, errors.New("no crawl in history")
	}
	return last, nil
}

func (opts *HistoryOptions) forget(report *types.CrawlReport) error {
	err := opts.History.Remove(report.ID)
	if err != nil && !errors.Is(err, storage.ErrReportNotFound) {
		return fmt.Errorf("remove crawl report in history: %w", err)
	}

	if report.LogPath != "" {
		err = os.Remove(report.LogPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove crawl log file: %w", err)
		}
	}

	fmt.Printf("Forgot crawl: %s\n", report.ID)
	return nil
}
