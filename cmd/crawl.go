package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fioncat/txtcrawl/crawler"
	"github.com/fioncat/txtcrawl/osutils"
	"github.com/fioncat/txtcrawl/provider"
	"github.com/fioncat/txtcrawl/storage"
	"github.com/fioncat/txtcrawl/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type crawlOptions struct {
	server string
	port   int

	basePath   string
	partitions []string
	count      int

	suffix string
	output string

	debug  bool
	strict bool
}

func Crawl() *cobra.Command {
	var co crawlOptions
	cmd := &cobra.Command{
		Use:   "crawl [--server HOST] [--base PATH] [--partitions A,B | --count N] [--suffix .txt] [--output FILE]",
		Short: "Download all matching files from the remote server into one file",

		Args: cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, _ []string) error {
			return co.run(cmd)
		},
	}

	flags := cmd.Flags()

	flags.StringVarP(&co.server, "server", "s", "", "The remote server hostname")
	flags.IntVarP(&co.port, "port", "P", 0, "The remote server port")

	flags.StringVarP(&co.basePath, "base", "b", "", "The remote directory to crawl")
	flags.StringSliceVarP(&co.partitions, "partitions", "p", nil, "The top-level directories to crawl in parallel")
	flags.IntVarP(&co.count, "count", "c", 0, "Crawl the top-level directories 0..count-1 in parallel")

	flags.StringVarP(&co.suffix, "suffix", "x", "", "Only download files with this name suffix")
	flags.StringVarP(&co.output, "output", "o", "", "The combined output file")

	flags.BoolVarP(&co.debug, "debug", "", false, "Set log level to debug")
	flags.BoolVarP(&co.strict, "strict", "", false, "Exit with error when any partition failed")

	return cmd
}

func (co *crawlOptions) apply(cfg *types.Config) error {
	if co.server != "" {
		cfg.Remote.Server = co.server
	}
	if co.port != 0 {
		cfg.Remote.Port = co.port
	}
	if co.basePath != "" {
		cfg.Crawl.BasePath = co.basePath
	}
	switch {
	case len(co.partitions) > 0 && co.count > 0:
		return errors.New("--partitions and --count could not be used together")
	case len(co.partitions) > 0:
		cfg.Crawl.Partitions = co.partitions
	case co.count > 0:
		cfg.Crawl.Partitions = types.DigitPartitions(co.count)
	}
	if co.suffix != "" {
		cfg.Crawl.FilterSuffix = co.suffix
	}
	if co.output != "" {
		cfg.Crawl.Output = co.output
	}

	return cfg.Validate()
}

func (co *crawlOptions) run(cmd *cobra.Command) error {
	if co.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := types.LoadConfig()
	if err != nil {
		return err
	}
	err = co.apply(cfg)
	if err != nil {
		return err
	}
	logrus.Debugf("The config value is: %+v", cfg)

	dialer, err := provider.Load(cfg)
	if err != nil {
		return err
	}

	history, err := storage.OpenBolt(cfg)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer history.Close()

	runID := uuid.NewString()
	logPath := filepath.Join(cfg.BaseDir, "logs", runID+".log")
	err = osutils.EnsureFilePathDir(logPath)
	if err != nil {
		return fmt.Errorf("ensure log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open crawl log file: %w", err)
	}
	defer logFile.Close()
	logrus.SetOutput(io.MultiWriter(cmd.ErrOrStderr(), logFile))
	defer logrus.SetOutput(cmd.ErrOrStderr())

	output := cfg.Crawl.Output
	agg, err := crawler.OpenAggregator(afero.NewOsFs(), output, crawler.WithProcessLock(output+".lock"))
	if err != nil {
		return err
	}

	coordinator := crawler.NewCoordinator(dialer, agg, crawler.CoordinatorOptions{
		FilterSuffix: cfg.Crawl.FilterSuffix,
		RunID:        runID,
		Server:       cfg.Remote.Addr(),
		Output:       output,
	})
	report := coordinator.CrawlAll(context.Background(), types.ParseRemotePath(cfg.Crawl.BasePath), cfg.Crawl.Partitions)
	report.LogPath = logPath

	err = agg.Close()
	if err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	err = history.Put(report)
	if err != nil {
		logrus.Warnf("Save crawl report to history error: %v", err)
	}

	showReport(report)
	showFileErrors(report)
	showReportSummary(report)

	fmt.Printf("\nDownload and combine done, saved as %q\n", output)

	if co.strict {
		if err := report.Err(); err != nil {
			return fmt.Errorf("%d partition(s) failed: %w", len(report.Failed()), err)
		}
	}
	return nil
}
