package crawler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/txtcrawl/types"
	"github.com/sirupsen/logrus"
)

// Append must be safe for concurrent use.
type Sink interface {
	Append(doc *types.Document) error
}

type WalkStats struct {
	Documents   int
	Bytes       int64
	Directories int
	Skipped     int

	FileErrors []types.FileError
}

type Walker struct {
	session types.Session
	sink    Sink

	suffix string

	logger *logrus.Entry

	stats *WalkStats
}

func NewWalker(session types.Session, sink Sink, suffix string, logger *logrus.Entry) *Walker {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Walker{
		session: session,
		sink:    sink,
		suffix:  suffix,
		logger:  logger,
	}
}

// Walk stops at the first listing or enter failure. File failures are only
// recorded in the stats.
func (w *Walker) Walk(root types.RemotePath) (*WalkStats, error) {
	w.stats = &WalkStats{}
	if !root.IsAbs() {
		// Paths are resolved by the server against the working directory,
		// which changes during the walk.
		return w.stats, &types.RemoteError{Op: "enter", Path: root.String(), Err: errors.New("path is not absolute")}
	}

	err := w.session.EnterDirectory(root)
	if err != nil {
		if errors.Is(err, types.ErrNotADirectory) {
			err = &types.RemoteError{Op: "enter", Path: root.String(), Err: err}
		}
		return w.stats, types.AsRemoteError("enter", root.String(), err)
	}

	err = w.walkDir(root)
	return w.stats, err
}

func (w *Walker) walkDir(dir types.RemotePath) error {
	w.stats.Directories++

	names, err := w.session.ListChildren(dir)
	if err != nil {
		return types.AsRemoteError("list", dir.String(), err)
	}

	for _, name := range names {
		switch name {
		case "", ".", "..":
			continue
		}
		child := dir.Join(name)

		err = w.session.EnterDirectory(child)
		switch {
		case err == nil:
			err = w.walkDir(child)
			if err != nil {
				return err
			}
			// Back to the parent before the next sibling.
			err = w.session.EnterDirectory(dir)
			if err != nil {
				return types.AsRemoteError("enter", dir.String(), err)
			}

		case errors.Is(err, types.ErrNotADirectory):
			w.visitFile(dir, name)

		default:
			return types.AsRemoteError("enter", child.String(), err)
		}
	}

	return nil
}

func (w *Walker) visitFile(dir types.RemotePath, name string) {
	path := dir.Join(name)
	if !strings.HasSuffix(name, w.suffix) {
		w.stats.Skipped++
		w.logger.Debugf("Skip %q", path.String())
		return
	}

	data, err := w.session.FetchFile(dir, name)
	if err != nil {
		w.fileError(path, fmt.Errorf("fetch: %w", types.AsRemoteError("retrieve", path.String(), err)))
		return
	}

	doc := &types.Document{Path: path, Data: data}
	err = w.sink.Append(doc)
	if err != nil {
		w.fileError(path, err)
		return
	}

	w.stats.Documents++
	w.stats.Bytes += int64(len(data))
	w.logger.Infof("Fetched and written: %s (%s)", path.String(), humanize.Bytes(uint64(len(data))))
}

func (w *Walker) fileError(path types.RemotePath, err error) {
	w.logger.Errorf("File %q error: %v", path.String(), err)
	w.stats.FileErrors = append(w.stats.FileErrors, types.FileError{
		Path:  path.String(),
		Error: err.Error(),
	})
}
