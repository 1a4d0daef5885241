package cmd

import (
	"github.com/spf13/cobra"
)

func Forget() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget [ID]",
		Short: "Remove crawl reports and their logs from history",

		Args: cobra.MaximumNArgs(1),
	}

	buildHistoryCommand(cmd, runForget)
	return cmd
}

// runForget never touches the combined output files.
func runForget(opts *HistoryOptions, _ []string) error {
	if opts.Report == nil {
		reports, err := opts.History.List()
		if err != nil {
			return err
		}

		for _, report := range reports {
			err = opts.forget(report)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return opts.forget(opts.Report)
}
