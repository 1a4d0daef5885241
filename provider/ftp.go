package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/txtcrawl/types"
	"github.com/jlaffaye/ftp"
	"github.com/sirupsen/logrus"
)

type ftpDialer struct {
	cfg *types.RemoteConfig
}

func newFtp(cfg *types.RemoteConfig) types.Dialer {
	return &ftpDialer{cfg: cfg}
}

func (d *ftpDialer) Dial(ctx context.Context) (types.Session, error) {
	addr := d.cfg.Addr()
	conn, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(d.cfg.DialTimeout),
	)
	if err != nil {
		return nil, &types.ConnectionError{Server: addr, Err: err}
	}

	err = conn.Login(d.cfg.User, d.cfg.Password)
	if err != nil {
		conn.Quit()
		return nil, &types.ConnectionError{
			Server: addr,
			Err:    fmt.Errorf("login as %q: %w", d.cfg.User, err),
		}
	}

	return &ftpSession{
		conn:   conn,
		logger: logrus.WithField("Server", addr),
	}, nil
}

type ftpSession struct {
	conn *ftp.ServerConn

	cwd string

	logger *logrus.Entry
}

func (s *ftpSession) EnterDirectory(path types.RemotePath) error {
	target := path.String()
	err := s.conn.ChangeDir(target)
	if err != nil {
		return classifyEnterError(target, err)
	}
	s.cwd = target
	return nil
}

func (s *ftpSession) ListChildren(path types.RemotePath) ([]string, error) {
	target := path.String()
	start := time.Now()
	entries, err := s.conn.NameList(target)
	if err != nil {
		if !isEmptyListReply(err) {
			return nil, &types.RemoteError{Op: "list", Path: target, Err: err}
		}
		s.logger.Debugf("List %q: %v, treat as empty directory", target, err)
		entries = nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := normalizeListEntry(entry)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	s.logger.Debugf("List %q done, with %d entries, took %v", target, len(names), time.Since(start))

	return names, nil
}

func (s *ftpSession) FetchFile(dir types.RemotePath, name string) ([]byte, error) {
	target := dir.Join(name).String()
	start := time.Now()
	resp, err := s.conn.Retr(target)
	if err != nil {
		return nil, &types.RemoteError{Op: "retrieve", Path: target, Err: err}
	}

	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp)
	closeErr := resp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, &types.RemoteError{Op: "retrieve", Path: target, Err: err}
	}
	s.logger.Debugf("Download %q done, size %s, took %v", target,
		humanize.Bytes(uint64(buf.Len())), time.Since(start))

	return buf.Bytes(), nil
}

func (s *ftpSession) Close() error {
	err := s.conn.Quit()
	if err != nil {
		return &types.RemoteError{Op: "quit", Path: s.cwd, Err: err}
	}
	return nil
}

// A permanent reply (5xx) to CWD means the entry is a file.
func classifyEnterError(path string, err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && protoErr.Code >= 500 && protoErr.Code < 600 {
		return fmt.Errorf("enter %q (%d %s): %w", path, protoErr.Code, protoErr.Msg, types.ErrNotADirectory)
	}
	return &types.RemoteError{Op: "enter", Path: path, Err: err}
}

// Some servers reject NLST on an empty directory instead of sending an empty
// list (ProFTPD "450 No files found", wu-ftpd 550). ListChildren is only
// called on a directory that was just entered, so these mean no children.
func isEmptyListReply(err error) bool {
	var protoErr *textproto.Error
	if !errors.As(err, &protoErr) {
		return false
	}
	return protoErr.Code == ftp.StatusFileActionIgnored || protoErr.Code == ftp.StatusFileUnavailable
}

// Some servers answer NLST with "dir/name" lines.
func normalizeListEntry(entry string) string {
	entry = strings.TrimRight(entry, "\r\n")
	entry = strings.TrimRight(entry, "/")
	name := entry
	if idx := strings.LastIndex(entry, "/"); idx >= 0 {
		name = entry[idx+1:]
	}
	switch name {
	case ".", "..":
		return ""
	}
	return name
}
