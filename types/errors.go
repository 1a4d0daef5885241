package types

import (
	"errors"
	"fmt"
)

// Not a failure: Session.EnterDirectory returns it for files.
var ErrNotADirectory = errors.New("not a directory")

type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type RemoteError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q to output: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func AsRemoteError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnownError(err) {
		return err
	}
	return &RemoteError{Op: op, Path: path, Err: err}
}

func IsKnownError(err error) bool {
	if errors.Is(err, ErrNotADirectory) {
		return true
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return true
	}
	var writeErr *WriteError
	return errors.As(err, &writeErr)
}
