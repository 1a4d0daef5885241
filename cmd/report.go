package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/txtcrawl/osutils"
	"github.com/fioncat/txtcrawl/types"
)

func showReport(report *types.CrawlReport) {
	rows := make([][]string, len(report.Partitions))
	for i, p := range report.Partitions {
		rows[i] = []string{
			p.Name,
			p.Status.Color(),
			fmt.Sprint(p.Documents),
			humanize.Bytes(uint64(p.Bytes)),
			fmt.Sprint(p.Directories),
			fmt.Sprint(len(p.FileErrors)),
			p.Duration.Round(time.Millisecond).String(),
			p.ErrorMessage,
		}
	}

	osutils.ShowTable([]string{"Partition", "Status", "Documents", "Size", "Dirs", "File Errors", "Duration", "Error"}, rows)
}

func showReportSummary(report *types.CrawlReport) {
	fmt.Println("")
	fmt.Printf("Crawl:     %s\n", report.ID)
	fmt.Printf("Server:    %s\n", report.Server)
	fmt.Printf("Base path: %s\n", report.BasePath.String())
	fmt.Printf("Output:    %s\n", report.Output)
	fmt.Printf("Documents: %d (%s)\n", report.Documents(), humanize.Bytes(uint64(report.Bytes())))
	fmt.Printf("Duration:  %v\n", report.Duration())
	if report.LogPath != "" {
		fmt.Printf("Log file:  %s\n", report.LogPath)
	}
}

func showFileErrors(report *types.CrawlReport) {
	var rows [][]string
	for _, p := range report.Partitions {
		for _, fe := range p.FileErrors {
			rows = append(rows, []string{p.Name, fe.Path, fe.Error})
		}
	}
	if len(rows) == 0 {
		return
	}

	fmt.Println("")
	osutils.ShowTable([]string{"Partition", "File", "Error"}, rows)
}
