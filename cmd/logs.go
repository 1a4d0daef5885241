package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

func Logs() *cobra.Command {
	var lo logsOptions
	cmd := &cobra.Command{
		Use:   "logs [-f] [-n NUM] [--all] [ID]",
		Short: "Show crawl logs, the latest crawl by default",

		Args: cobra.MaximumNArgs(1),
	}

	buildHistoryCommand(cmd, lo.run)

	flags := cmd.Flags()
	flags.BoolVarP(&lo.all, "all", "a", false, "Print all logs")
	flags.BoolVarP(&lo.follow, "follow", "f", false, "Follow expand output")
	flags.IntVarP(&lo.number, "num", "n", 0, "tail number lines")

	return cmd
}

type logsOptions struct {
	all    bool
	follow bool
	number int
}

func (lo *logsOptions) run(opts *HistoryOptions, _ []string) error {
	report, err := opts.latest()
	if err != nil {
		return err
	}
	if report.LogPath == "" {
		return errors.New("the crawl has no log file")
	}

	if lo.all {
		var file *os.File
		file, err = os.Open(report.LogPath)
		if err != nil {
			return fmt.Errorf("open crawl log file: %w", err)
		}
		defer file.Close()

		_, err = io.Copy(os.Stdout, file)
		if err != nil {
			return fmt.Errorf("read crawl log file: %w", err)
		}

		return nil
	}

	var args []string
	if lo.follow {
		args = append(args, "-f")
	}
	if lo.number > 0 {
		args = append(args, "-n", fmt.Sprint(lo.number))
	}
	args = append(args, report.LogPath)
	cmd := exec.Command("tail", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("tail command exited: %w", err)
	}

	return nil
}
