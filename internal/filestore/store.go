// Package filestore provides a unified abstraction for file storage operations.
package filestore

import (
	"context"
	"io"
	"time"
)

// StorageType defines storage types supported by application
type StorageType string

const (
	StorageS3   StorageType = "cloud"
	StorageDisk StorageType = "local"
)

// FileStorage defines the interface for file storage operations.
// Implementations resolve untrusted names themselves and never expose
// backend paths to callers.
type FileStorage interface {
	// Store writes content under the sanitized form of name, replacing any
	// existing file of that name. The returned StoredFile.Name is the
	// identifier to use for retrieval.
	Store(ctx context.Context, name string, content io.Reader) (StoredFile, error)

	// Retrieve opens the file stored under name.
	// The caller must close the returned Object.
	Retrieve(ctx context.Context, name string) (*Object, error)

	// List returns the names of all stored files, in backend order.
	List(ctx context.Context) ([]string, error)

	// Location describes where files are kept, for logs and metrics.
	Location() string
}

// StoredFile is the result of a successful Store.
type StoredFile struct {
	Name string
	Size int64
}

// Object is a streaming handle to a stored file.
type Object struct {
	io.ReadCloser

	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
}
