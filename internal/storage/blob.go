package storage

import "io"

// BlobStore holds course and test images referenced by catalog rows.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
