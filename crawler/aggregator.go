package crawler

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fioncat/txtcrawl/osutils"
	"github.com/fioncat/txtcrawl/types"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const Separator = "\n\n" + "================================================================================" + "\n\n"

// Aggregator writes each document and its separator as one unit. Units are
// ordered by lock acquisition, not by traversal order.
type Aggregator struct {
	mu sync.Mutex

	w    io.Writer
	file afero.File

	processLock *flock.Flock
}

type AggregatorOption func(a *Aggregator)

// WithProcessLock also holds a file lock at lockPath during each append.
func WithProcessLock(lockPath string) AggregatorOption {
	return func(a *Aggregator) {
		a.processLock = flock.New(lockPath)
	}
}

func NewAggregator(w io.Writer, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{w: w}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func OpenAggregator(fs afero.Fs, path string, opts ...AggregatorOption) (*Aggregator, error) {
	if _, ok := fs.(*afero.OsFs); ok {
		err := osutils.EnsureFilePathDir(path)
		if err != nil {
			return nil, fmt.Errorf("ensure output dir: %w", err)
		}
	}

	file, err := fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	a := NewAggregator(file, opts...)
	a.file = file
	return a, nil
}

func (a *Aggregator) Append(doc *types.Document) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.processLock != nil {
		err := a.processLock.Lock()
		if err != nil {
			return &types.WriteError{Path: doc.Path.String(), Err: fmt.Errorf("acquire output lock: %w", err)}
		}
		defer a.processLock.Unlock()
	}

	_, err := io.WriteString(a.w, doc.Text())
	if err != nil {
		return &types.WriteError{Path: doc.Path.String(), Err: err}
	}
	_, err = io.WriteString(a.w, Separator)
	if err != nil {
		return &types.WriteError{Path: doc.Path.String(), Err: err}
	}

	return nil
}

func (a *Aggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.processLock != nil {
		a.processLock.Close()
	}
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}
