// Package storage implements physical byte storage for uploaded files.
// Metadata lives in the database; this package only deals with blobs.
package storage

import "io"

// BlobStore is a directory-like location for file payloads. Paths returned
// by Save are opaque to callers and are the only handle to the bytes.
type BlobStore interface {
	// Save streams r to a new blob named name and returns its absolute
	// path together with the number of bytes written. An existing blob
	// with the same name is overwritten.
	Save(name string, r io.Reader) (path string, written int64, err error)

	// Open returns a reader over the blob at path. A missing or
	// unreadable blob is an error.
	Open(path string) (io.ReadCloser, error)

	// Delete removes the blob at path.
	Delete(path string) error
}
