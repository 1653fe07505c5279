// Package storage persists source and combined PDF documents. The
// production implementation is Azure Blob Storage; an in-memory store
// backs tests and local development.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("storage: document not found")

// Store gives access to one container of documents.
type Store interface {
	// Upload stores a document and returns its URL.
	Upload(ctx context.Context, name string, data io.Reader, contentType string) (url string, err error)

	// Get opens a stored document for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a stored document.
	Delete(ctx context.Context, name string) error

	// Exists checks whether a document is stored.
	Exists(ctx context.Context, name string) (bool, error)

	// List enumerates stored documents with an optional name prefix.
	List(ctx context.Context, prefix string) ([]DocumentInfo, error)
}

// DocumentInfo describes a stored document.
type DocumentInfo struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	URL          string `json:"url,omitempty"`
}
