// Package cache defines the content-addressed store a Reader can consult
// before decompressing a file.
//
// Keys are the digests recorded in the archive index, so one cache can be
// shared by every archive on a host: identical files in different
// archives map to the same entry.
package cache

import "github.com/opencontainers/go-digest"

// Cache stores uncompressed file contents by digest.
//
// Implementations must be safe for concurrent use and must only return
// content that matches the requested digest.
type Cache interface {
	// Get returns the content stored under d.
	// Returns nil, false if the content is not cached.
	Get(d digest.Digest) ([]byte, bool)

	// Put stores content under d. The caller has already verified that
	// content matches d.
	Put(d digest.Digest, content []byte) error
}
