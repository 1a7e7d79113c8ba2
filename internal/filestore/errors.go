package filestore

import (
	"errors"
	"fmt"
)

// Error kinds returned by every FileStorage implementation. Callers match
// them with errors.Is; the backend-specific cause stays in the chain.
var (
	ErrConfiguration = errors.New("storage root could not be resolved")
	ErrInvalidName   = errors.New("invalid file name")
	ErrPathTraversal = errors.New("path escapes the storage root")
	ErrNotFound      = errors.New("file not found")
	ErrWrite         = errors.New("failed to write file")
	ErrRead          = errors.New("failed to read file")
	ErrList          = errors.New("failed to list files")
)

// Error records a failed storage operation.
type Error struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Name != "" {
		msg = fmt.Sprintf("%s %q: %s", e.Op, e.Name, msg)
	} else {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, name string, kind, cause error) *Error {
	return &Error{Op: op, Name: name, Kind: kind, Err: cause}
}
