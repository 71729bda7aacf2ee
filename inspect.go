package wax

import (
	"fmt"
	"os"

	"github.com/meigma/wax/internal/header"
)

// InspectResult describes an archive as seen from its header alone.
type InspectResult struct {
	// Header is the decoded, validated header.
	Header Header

	// FileSize is the size of the archive file in bytes.
	FileSize int64
}

// BlobBytes returns the size of the blob region between the header and
// the index.
func (r *InspectResult) BlobBytes() uint64 {
	return r.Header.IndexOffset - HeaderSize
}

// TrailingBytes returns the number of bytes after the index. Archives
// written by Builder have none.
func (r *InspectResult) TrailingBytes() uint64 {
	return uint64(r.FileSize) - (r.Header.IndexOffset + r.Header.IndexLength)
}

// Inspect reads and validates the header of the archive at path and
// checks that the index range fits in the file. It does not open the
// index; use Open for that.
func Inspect(path string) (*InspectResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	h, err := header.Read(f)
	if err != nil {
		return nil, err
	}
	if err := h.CheckBounds(info.Size()); err != nil {
		return nil, err
	}
	return &InspectResult{Header: h, FileSize: info.Size()}, nil
}
