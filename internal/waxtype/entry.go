package waxtype

import "github.com/opencontainers/go-digest"

// DefaultContentType is reported for entries without a recorded content type.
const DefaultContentType = "application/octet-stream"

// Entry represents one archived file as recorded in the index.
type Entry struct {
	// Path is the file path relative to the input root, always
	// forward-slash separated (e.g., "src/main.go").
	Path string

	// ContentType is the guessed media type. Empty means none was recorded,
	// which readers render as DefaultContentType.
	ContentType string

	// BlobOffset is the absolute byte offset of the compressed content.
	BlobOffset uint64

	// BlobLength is the size in bytes of the compressed content on disk.
	BlobLength uint64

	// OriginalSize is the uncompressed size in bytes.
	OriginalSize uint64

	// Digest is the digest of the uncompressed content. Empty when the
	// index did not record one.
	Digest digest.Digest
}

// EffectiveContentType returns the content type, or DefaultContentType
// when none was recorded.
func (e *Entry) EffectiveContentType() string {
	if e.ContentType == "" {
		return DefaultContentType
	}
	return e.ContentType
}

// EntryInfo is the public listing view of an entry. It exposes the
// original size only; compressed lengths stay internal to the reader.
type EntryInfo struct {
	Path        string
	ContentType string
	Size        uint64
}

// Info returns the listing view of e.
func (e *Entry) Info() EntryInfo {
	return EntryInfo{
		Path:        e.Path,
		ContentType: e.EffectiveContentType(),
		Size:        e.OriginalSize,
	}
}
