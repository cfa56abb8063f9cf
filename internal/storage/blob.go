package storage

import "io"

// BlobStore keeps the original bytes of uploaded source files so a source
// can be re-extracted later without re-uploading.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
