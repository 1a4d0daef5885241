package crawler

import (
	"context"
	"time"

	"github.com/fioncat/txtcrawl/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Coordinator struct {
	dialer types.Dialer
	sink   Sink

	suffix string
	runID  string
	server string
	output string
}

type CoordinatorOptions struct {
	FilterSuffix string

	// Random when empty.
	RunID string

	// Server and Output are only recorded in the report.
	Server string
	Output string
}

func NewCoordinator(dialer types.Dialer, sink Sink, opts CoordinatorOptions) *Coordinator {
	return &Coordinator{
		dialer: dialer,
		sink:   sink,
		suffix: opts.FilterSuffix,
		runID:  opts.RunID,
		server: opts.Server,
		output: opts.Output,
	}
}

// The report has one result per segment, in segment order.
func (c *Coordinator) CrawlAll(ctx context.Context, base types.RemotePath, segments []string) *types.CrawlReport {
	id := c.runID
	if id == "" {
		id = uuid.NewString()
	}
	report := &types.CrawlReport{
		ID:         id,
		Server:     c.server,
		BasePath:   base,
		Filter:     c.suffix,
		Output:     c.output,
		StartTime:  time.Now().UnixMilli(),
		Partitions: make([]*types.PartitionResult, len(segments)),
	}

	logrus.Infof("Start crawl %s on %q with %d partitions", report.ID, base.String(), len(segments))

	// The group context is not used: no partition may cancel another.
	var group errgroup.Group
	for i, segment := range segments {
		result := &types.PartitionResult{
			Name: segment,
			Path: base.Join(segment),
		}
		report.Partitions[i] = result
		group.Go(func() error {
			c.crawlPartition(ctx, result)
			return nil
		})
	}
	group.Wait()

	report.EndTime = time.Now().UnixMilli()
	logrus.Infof("Crawl %s done, %d documents written, %d partitions failed, took %v",
		report.ID, report.Documents(), len(report.Failed()), report.Duration())

	return report
}

func (c *Coordinator) crawlPartition(ctx context.Context, result *types.PartitionResult) {
	logger := logrus.WithFields(logrus.Fields{
		"Partition": result.Name,
		"Path":      result.Path.String(),
	})
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	session, err := c.dialer.Dial(ctx)
	if err != nil {
		logger.Errorf("Partition %q error: %v", result.Name, err)
		result.Fail(err)
		return
	}
	defer func() {
		err := session.Close()
		if err != nil {
			logger.Warnf("Close session error: %v", err)
		}
	}()

	walker := NewWalker(session, c.sink, c.suffix, logger)
	stats, err := walker.Walk(result.Path)

	result.Documents = stats.Documents
	result.Bytes = stats.Bytes
	result.Directories = stats.Directories
	result.Skipped = stats.Skipped
	result.FileErrors = stats.FileErrors

	if err != nil {
		logger.Errorf("Partition %q error: %v", result.Name, err)
		result.Fail(err)
		return
	}
	result.Status = types.PartitionStatusSucceeded
	logger.Infof("Partition %q done, %d documents, %d directories", result.Name, stats.Documents, stats.Directories)
}
