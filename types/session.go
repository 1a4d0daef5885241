package types

import (
	"context"
	"strings"
)

// Session is not safe for concurrent use.
type Session interface {
	// Entering a file must return an error wrapping ErrNotADirectory, never
	// a RemoteError.
	EnterDirectory(path RemotePath) error

	ListChildren(path RemotePath) ([]string, error)
	FetchFile(dir RemotePath, name string) ([]byte, error)

	Close() error
}

type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

type Document struct {
	Path RemotePath
	Data []byte
}

func (d *Document) Text() string {
	return strings.ToValidUTF8(string(d.Data), "")
}
