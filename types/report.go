package types

import (
	"errors"
	"time"

	"github.com/fatih/color"
	"go.uber.org/multierr"
)

type PartitionStatus string

const (
	PartitionStatusSucceeded PartitionStatus = "succeeded"
	PartitionStatusFailed    PartitionStatus = "failed"
)

func (s PartitionStatus) Color() string {
	switch s {
	case PartitionStatusSucceeded:
		return color.GreenString(string(s))

	case PartitionStatusFailed:
		return color.RedString(string(s))
	}
	return ""
}

type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type PartitionResult struct {
	Name string     `json:"name"`
	Path RemotePath `json:"path"`

	Status PartitionStatus `json:"status"`

	ErrorMessage string `json:"errMsg,omitempty"`

	Documents   int   `json:"documents"`
	Bytes       int64 `json:"bytes"`
	Directories int   `json:"directories"`
	Skipped     int   `json:"skipped"`

	FileErrors []FileError `json:"fileErrors,omitempty"`

	Duration time.Duration `json:"duration"`

	err error
}

func (r *PartitionResult) Fail(err error) {
	r.Status = PartitionStatusFailed
	r.ErrorMessage = err.Error()
	r.err = err
}

// For results decoded from history only the message survives.
func (r *PartitionResult) Err() error {
	if r.err != nil {
		return r.err
	}
	if r.ErrorMessage != "" {
		return errors.New(r.ErrorMessage)
	}
	return nil
}

type CrawlReport struct {
	ID string `json:"id"`

	Server   string     `json:"server"`
	BasePath RemotePath `json:"basePath"`
	Filter   string     `json:"filter"`
	Output   string     `json:"output"`

	LogPath string `json:"logPath,omitempty"`

	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`

	Partitions []*PartitionResult `json:"partitions"`
}

func (r *CrawlReport) Documents() int {
	var total int
	for _, p := range r.Partitions {
		total += p.Documents
	}
	return total
}

func (r *CrawlReport) Bytes() int64 {
	var total int64
	for _, p := range r.Partitions {
		total += p.Bytes
	}
	return total
}

func (r *CrawlReport) Failed() []*PartitionResult {
	var failed []*PartitionResult
	for _, p := range r.Partitions {
		if p.Status == PartitionStatusFailed {
			failed = append(failed, p)
		}
	}
	return failed
}

func (r *CrawlReport) Err() error {
	var err error
	for _, p := range r.Failed() {
		err = multierr.Append(err, p.Err())
	}
	return err
}

func (r *CrawlReport) Duration() time.Duration {
	return time.Duration(r.EndTime-r.StartTime) * time.Millisecond
}

type ReportHistory interface {
	Put(report *CrawlReport) error
	Get(id string) (*CrawlReport, error)
	List() ([]*CrawlReport, error)
	Remove(id string) error
}
